package forecast

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NumFeatures is the length of the model feature vector.
const NumFeatures = 5

// FeatureNames lists the model features in vector order.
var FeatureNames = [NumFeatures]string{
	"indoor_temperature",
	"outside_temperature",
	"device_usage",
	"hour",
	"weekday",
}

// Input holds the features of one prediction request.
type Input struct {
	IndoorTemperature  float64 `json:"indoor_temperature" validate:"gte=0,lte=50"`
	OutsideTemperature float64 `json:"outside_temperature" validate:"gte=-10,lte=50"`
	DeviceUsage        int     `json:"device_usage" validate:"gte=0,lte=1"`
	Hour               int     `json:"hour" validate:"gte=0,lte=23"`
	Weekday            int     `json:"weekday" validate:"gte=0,lte=6"`
}

// DefaultInput returns the values shown in a fresh form.
func DefaultInput() Input {
	return Input{IndoorTemperature: 25.0, OutsideTemperature: 30.0, DeviceUsage: 1, Hour: 12, Weekday: 2}
}

// Vector returns the features in model order.
func (in Input) Vector() []float64 {
	return []float64{
		in.IndoorTemperature,
		in.OutsideTemperature,
		float64(in.DeviceUsage),
		float64(in.Hour),
		float64(in.Weekday),
	}
}

// Field describes one bounded input control.
type Field struct {
	Name    string
	Label   string
	Min     float64
	Max     float64
	Step    float64
	Integer bool
}

// Fields describes the inputs in vector order.
var Fields = [NumFeatures]Field{
	{Name: FeatureNames[0], Label: "Indoor Temperature (°C)", Min: 0, Max: 50, Step: 0.1},
	{Name: FeatureNames[1], Label: "Outside Temperature (°C)", Min: -10, Max: 50, Step: 0.1},
	{Name: FeatureNames[2], Label: "Device Usage (0 = Off, 1 = On)", Min: 0, Max: 1, Step: 1, Integer: true},
	{Name: FeatureNames[3], Label: "Hour of Day (0–23)", Min: 0, Max: 23, Step: 1, Integer: true},
	{Name: FeatureNames[4], Label: "Day of Week (0 = Mon, ..., 6 = Sun)", Min: 0, Max: 6, Step: 1, Integer: true},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every feature against its bounds. The returned error wraps
// ErrOutOfRange and names each offending field.
func (in Input) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe.Field()))
	}
	return fmt.Errorf("%w: %s", ErrOutOfRange, strings.Join(msgs, "; "))
}

func fieldMessage(name string) string {
	for _, f := range Fields {
		if f.Name == name {
			return fmt.Sprintf("%s must be within [%g, %g]", name, f.Min, f.Max)
		}
	}
	return name + " is invalid"
}
