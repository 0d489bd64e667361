package models

import "github.com/kilianp07/homeenergy/core/forecast"

func init() {
	_ = forecast.RegisterModel("linear", newLinear)
	_ = forecast.RegisterModel("forest", newForest)
	_ = forecast.RegisterModel("mlp", newMLP)
}
