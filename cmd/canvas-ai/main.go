// Command canvas-ai serves the prompt API and hosts its terminal and
// command-line clients.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"canvas-ai/internal/infra/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// Globals are flags shared by every command.
type Globals struct {
	Config string `short:"c" type:"path" env:"CANVASAI_CONFIG" help:"Config file (default ./config.yaml, then the XDG config dir)."`
}

// loadConfig reads the config named by --config, or the default location.
// A missing file yields defaults with env overrides applied.
func (g *Globals) loadConfig() (*config.Config, error) {
	path := g.Config
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

type cli struct {
	Globals

	Serve         serveCmd         `cmd:"" default:"1" help:"Run the prompt API (default)."`
	TUI           tuiCmd           `cmd:"" name:"tui" help:"Draw in the terminal against a running server."`
	Render        renderCmd        `cmd:"" help:"Render a saved object list to PNG or text."`
	History       historyCmd       `cmd:"" help:"List recent prompts from the history database."`
	EncryptSecret encryptSecretCmd `cmd:"" help:"Encrypt a secret for use as enc:... in the config file."`
	Version       versionCmd       `cmd:"" help:"Print the version."`
}

func main() {
	var c cli
	ctx := kong.Parse(&c,
		kong.Name("canvas-ai"),
		kong.Description("Prompt-driven canvas: an LLM turns descriptions into drawable objects."),
		kong.UsageOnError(),
	)
	if err := ctx.Run(&c.Globals); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", ctx.Command(), err)
		os.Exit(1)
	}
}

type versionCmd struct{}

func (versionCmd) Run() error {
	fmt.Println("canvas-ai", version)
	return nil
}
