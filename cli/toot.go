package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CrestNiraj12/mastosql/app"
	"github.com/CrestNiraj12/mastosql/domain"
	"github.com/CrestNiraj12/mastosql/infra/editor"
	"github.com/CrestNiraj12/mastosql/tui/compose"
)

func newTootCommand(e *env) *cobra.Command {
	var (
		visibility, cw string
		useEditor      bool
		inline         bool
	)

	cmd := &cobra.Command{
		Use:   "toot [TEXT...]",
		Short: "Publish a status and print its id",
		RunE: func(cmd *cobra.Command, args []string) error {
			if useEditor && inline {
				return fmt.Errorf("%w: --edit and --inline are exclusive", domain.ErrMissingArgument)
			}
			text := strings.Join(args, " ")

			var err error
			switch {
			case useEditor:
				ed := editor.NewEnvEditor()
				ed.Stdin, ed.Stdout, ed.Stderr = e.opts.In, e.opts.Err, e.opts.Err
				text, err = ed.Compose(cmd.Context(), text, cw)
			case inline:
				text, err = compose.Run(cmd.Context(), e.opts.In, e.opts.Err, text, cw)
			}
			if err != nil {
				return err
			}

			var id string
			if cw != "" {
				id, err = e.conn.TootCW(cmd.Context(), cw, text, visibility)
			} else {
				id, err = e.conn.Toot(cmd.Context(), text, visibility)
			}
			if err != nil {
				return err
			}
			return e.print(app.ScalarTable("id", id))
		},
	}

	cmd.Flags().StringVar(&visibility, "visibility", domain.VisibilityPublic, "public, unlisted, private or direct")
	cmd.Flags().StringVar(&cw, "cw", "", "content warning shown before the text")
	cmd.Flags().BoolVarP(&useEditor, "edit", "e", false, "compose the text in $EDITOR")
	cmd.Flags().BoolVarP(&inline, "inline", "i", false, "compose the text in an inline editor")
	return cmd
}
