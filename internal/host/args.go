package host

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
)

// Args are the launch arguments the host passes to the plugin process.
type Args struct {
	Port          int
	PluginUUID    string
	RegisterEvent string
	Info          Info
}

// Info is the subset of the host's -info JSON the plugin logs at startup.
type Info struct {
	Application struct {
		Platform string `json:"platform"`
		Version  string `json:"version"`
		Language string `json:"language"`
	} `json:"application"`
	Plugin struct {
		UUID    string `json:"uuid"`
		Version string `json:"version"`
	} `json:"plugin"`
}

// Bind registers the host launch flags on fs. Call Validate after parsing.
func (a *Args) Bind(fs *flag.FlagSet, info *string) {
	fs.IntVar(&a.Port, "port", 0, "Host websocket port")
	fs.StringVar(&a.PluginUUID, "pluginUUID", "", "Plugin registration UUID")
	fs.StringVar(&a.RegisterEvent, "registerEvent", "", "Registration event name")
	fs.StringVar(info, "info", "", "Host and device information (JSON)")
}

// Finish decodes the raw -info JSON and checks the required arguments.
func (a *Args) Finish(rawInfo string) error {
	if rawInfo != "" {
		if err := json.Unmarshal([]byte(rawInfo), &a.Info); err != nil {
			return fmt.Errorf("parsing -info: %w", err)
		}
	}
	return a.Validate()
}

// Validate checks that the arguments needed to connect are present.
func (a *Args) Validate() error {
	var errs []error
	if a.Port <= 0 || a.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid -port %d", a.Port))
	}
	if a.PluginUUID == "" {
		errs = append(errs, errors.New("-pluginUUID is required"))
	}
	if a.RegisterEvent == "" {
		errs = append(errs, errors.New("-registerEvent is required"))
	}
	return errors.Join(errs...)
}
