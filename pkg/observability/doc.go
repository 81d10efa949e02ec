/*
Package observability exposes the lifecycle of a settle.Manager as Prometheus
metrics.

Metrics are driven entirely by domain.LifecycleHooks, so they can be combined
with any other hooks through LifecycleHooks.Merge:

	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return err
	}
	m := settle.New(initial, settle.WithLifecycleHooks(metrics.Hooks()))
*/
package observability
