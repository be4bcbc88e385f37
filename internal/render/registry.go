package render

import (
	"log/slog"

	"github.com/starford/meow/internal/markup"
)

// Options selects and configures the backends.
type Options struct {
	Markdown MarkdownOptions
	Textile  []string
	RST      []string
}

// DefaultTextile and DefaultRST are the converter command lines used when
// none are configured.
var (
	DefaultTextile = []string{"pandoc", "--from=textile", "--to=html"}
	DefaultRST     = []string{"pandoc", "--from=rst", "--to=html"}
)

// NewRegistry registers every backend that is usable on this machine, in
// catalog order. Kinds whose converter is missing are left out so that
// documents of that kind resolve as unsupported instead of failing later.
func NewRegistry(opts Options, logger *slog.Logger) *markup.Registry {
	reg := markup.NewRegistry()

	commands := map[markup.Kind][]string{
		markup.Textile: orDefault(opts.Textile, DefaultTextile),
		markup.RST:     orDefault(opts.RST, DefaultRST),
	}

	for _, spec := range markup.Catalog {
		if spec.Kind == markup.Markdown {
			reg.Register(spec.Kind, spec.Pattern(), NewMarkdown(opts.Markdown).Render)
			logger.Debug("backend registered", slog.String("kind", string(spec.Kind)), slog.String("backend", spec.Backend))
			continue
		}

		argv, ok := commands[spec.Kind]
		if !ok {
			continue
		}
		cmd, err := NewCommand(argv)
		if err != nil {
			logger.Debug("backend unavailable",
				slog.String("kind", string(spec.Kind)),
				slog.String("error", err.Error()))
			continue
		}
		reg.Register(spec.Kind, spec.Pattern(), cmd.Render)
		logger.Debug("backend registered", slog.String("kind", string(spec.Kind)), slog.String("command", cmd.String()))
	}

	return reg
}

func orDefault(argv, def []string) []string {
	if len(argv) == 0 {
		return def
	}
	return argv
}
