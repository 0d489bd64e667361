// Package forecast turns the five user-supplied features into a single
// consumption forecast using a pre-trained regression model, and classifies
// the forecast against the historical baseline.
//
// Models are opaque: any type implementing Model can be used. Artifacts on
// disk are decoded by LoadModel and built through the kind registry, so new
// model kinds only need to call RegisterModel from an init function.
package forecast
