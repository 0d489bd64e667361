package history

import (
	"time"

	"github.com/kilianp07/homeenergy/core/factory"
	corehistory "github.com/kilianp07/homeenergy/core/history"
)

type sourceConf struct {
	Path          string `json:"path"`
	Table         string `json:"table"`
	MalformedRows string `json:"malformed_rows"`
	Location      string `json:"location"`
}

func (c sourceConf) resolve() (corehistory.Policy, *time.Location, error) {
	policy, err := corehistory.ParsePolicy(c.MalformedRows)
	if err != nil {
		return "", nil, err
	}
	loc := time.UTC
	if c.Location != "" {
		if loc, err = time.LoadLocation(c.Location); err != nil {
			return "", nil, err
		}
	}
	return policy, loc, nil
}

// init registers the built-in history sources.
func init() {
	_ = corehistory.RegisterSource("csv", func(conf map[string]any) (corehistory.Source, error) {
		var c sourceConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		policy, loc, err := c.resolve()
		if err != nil {
			return nil, err
		}
		return NewCSVSource(c.Path, policy, loc), nil
	})

	_ = corehistory.RegisterSource("sqlite", func(conf map[string]any) (corehistory.Source, error) {
		var c sourceConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		policy, loc, err := c.resolve()
		if err != nil {
			return nil, err
		}
		src, err := NewSQLiteSource(c.Path, c.Table, policy, loc)
		if err != nil {
			return nil, err
		}
		return src, nil
	})
}
