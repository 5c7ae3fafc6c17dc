package nav

import "github.com/VictoriaMetrics/metrics"

var (
	stepsFast    = metrics.NewCounter(`itemnav_steps_total{path="fast"}`)
	stepsSlow    = metrics.NewCounter(`itemnav_steps_total{path="slow"}`)
	stepFailures = metrics.NewCounter(`itemnav_step_failures_total`)
	stepsInert   = metrics.NewCounter(`itemnav_step_inert_total`)
)
