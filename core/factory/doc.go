// Package factory provides a small generic registry used to instantiate modules
// from configuration. Modules are defined by a type string and a map of raw
// settings; history sources, metrics sinks and model kinds are all built this
// way.
//
// Example usage:
//
//	reg := factory.NewRegistry[history.Source]()
//	reg.Register("csv", func(conf map[string]any) (history.Source, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return NewCSVSource(c.Path), nil
//	})
//	src, err := reg.Create(factory.ModuleConfig{Type: "csv", Conf: map[string]any{"path": "household_energy.csv"}})
package factory
