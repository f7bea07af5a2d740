package commands

import (
	"errors"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/notes/pkg/commands/options"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/runner/media"
)

func addMedia(topLevel *cobra.Command) {
	addAttach(topLevel)
	addDetach(topLevel)
}

func addAttach(topLevel *cobra.Command) {
	var (
		noteID      int64
		source      string
		kind        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "attach <note id> <file or uri>",
		Short: "Attach a photo, video, audio recording or file to a note",
		Example: `
notes attach 12 ./whiteboard.jpg
notes attach 12 https://example.com/talk.mp4 --description "recording"
notes attach 12 ./memo.m4a --kind audio
`,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveDefault
			}
			return completeNoteIDs(note.CategoryAll)(cmd, args, toComplete)
		},
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("requires a note id and a file or uri")
			}
			var err error
			noteID, err = options.ParseID(args[0])
			source = args[1]
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			var mk note.MediaKind
			if kind != "" {
				var err error
				if mk, err = note.ParseMediaKind(kind); err != nil {
					return oo.HandleError(err)
				}
			}
			return run(cmd.Context(), func(s *session) error {
				a := media.Attach{
					Service:     s.Service,
					NoteID:      noteID,
					Source:      source,
					Kind:        mk,
					Description: description,
					JSON:        oo.JSON,
				}
				return a.Do(cmd.Context())
			})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "",
		"One of photo, video, audio or file. Guessed from the name when empty.")
	cmd.Flags().StringVarP(&description, "description", "d", "",
		"Caption of the attachment.")
	_ = cmd.RegisterFlagCompletionFunc("kind", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{
			string(note.MediaPhoto), string(note.MediaVideo), string(note.MediaAudio), string(note.MediaFile),
		}, cobra.ShellCompDirectiveNoFileComp
	})

	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addDetach(topLevel *cobra.Command) {
	var ids []int64

	cmd := &cobra.Command{
		Use:   "detach <media id>...",
		Short: "Remove attachments",
		Example: `
notes show 12
notes detach 4
`,
		Args: func(_ *cobra.Command, args []string) error {
			var err error
			ids, err = options.ParseIDs(args)
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return run(cmd.Context(), func(s *session) error {
				d := media.Detach{
					Service:  s.Service,
					MediaIDs: ids,
				}
				return d.Do(cmd.Context())
			})
		},
	}

	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
