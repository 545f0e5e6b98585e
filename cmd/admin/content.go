package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/khoahotran/folio/adapters/apiclient"
	"github.com/khoahotran/folio/internal/application/manager"
	"github.com/khoahotran/folio/internal/domain/certification"
	"github.com/khoahotran/folio/internal/domain/content"
	"github.com/khoahotran/folio/internal/domain/media"
	"github.com/khoahotran/folio/internal/domain/profile"
	"github.com/khoahotran/folio/internal/domain/project"
	"github.com/khoahotran/folio/internal/domain/skill"
)

// contentKind tells the generic commands how to reach one content table.
type contentKind[T content.Record[T]] struct {
	use    string
	short  string
	schema manager.Schema[T]
	table  func(c *apiclient.Client) content.Table[T]
}

func (k contentKind[T]) open() *manager.Manager[T] {
	client := newClient()
	return manager.New(
		k.table(client),
		k.schema,
		newLineConfirmer(os.Stdin, os.Stderr, assumeYes),
		writerNotifier{out: os.Stderr, errOut: os.Stderr},
		client,
	)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		exitOnErr("Unable to print result", err)
	}
}

func readDraft[T any](path string) (T, error) {
	var row T
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return row, err
		}
		defer f.Close()
		r = f
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	err := dec.Decode(&row)
	return row, err
}

func openImage(path string) (manager.File, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return manager.File{}, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return manager.File{}, nil, err
	}
	return manager.File{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Size:        info.Size(),
		Body:        f,
	}, func() { f.Close() }, nil
}

func parseRowID(arg string) int64 {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintf(os.Stderr, "Invalid id %q\n", arg)
		os.Exit(1)
	}
	return id
}

// command builds list, new, edit, save, image and delete for one table.
// Singleton tables get no edit or delete.
func (k contentKind[T]) command() *cobra.Command {
	root := &cobra.Command{
		Use:   k.use,
		Short: k.short,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Print(cmd.Help())
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print every row",
		Run: func(cmd *cobra.Command, args []string) {
			rows, err := k.open().List(cmd.Context())
			exitOnErr("Unable to list "+k.schema.Table, err)
			printJSON(rows)
		},
	}

	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Print an empty draft to fill in and pass to save",
		Run: func(cmd *cobra.Command, args []string) {
			m := k.open()
			_, err := m.List(cmd.Context())
			exitOnErr("Unable to list "+k.schema.Table, err)
			printJSON(m.BeginCreate())
		},
	}

	saveCmd := &cobra.Command{
		Use:   "save",
		Short: "Create or update a row from a JSON draft",
		Long:  "Rows without an id are created, rows with an id are updated.",
		Run: func(cmd *cobra.Command, args []string) {
			path, _ := cmd.Flags().GetString("file")
			imagePath, _ := cmd.Flags().GetString("image")

			draft, err := readDraft[T](path)
			exitOnErr("Unable to read draft", err)

			m := k.open()
			m.SetDraft(draft)
			if imagePath != "" {
				attachImage(cmd, m, imagePath)
			}
			saved, err := m.Save(cmd.Context())
			exitOnErr("Unable to save "+k.schema.Label, err)
			printJSON(saved)
		},
	}
	saveCmd.Flags().StringP("file", "f", "-", "draft JSON file, - for stdin")
	saveCmd.Flags().String("image", "", "image file to upload and attach before saving")

	root.AddCommand(listCmd, newCmd, saveCmd)

	if k.schema.Singleton {
		listCmd.Use = "show"
		listCmd.Aliases = []string{"list"}
		listCmd.Short = "Print the row"
		return root
	}

	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Print a row as a draft to change and pass to save",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			m := k.open()
			_, err := m.List(cmd.Context())
			exitOnErr("Unable to list "+k.schema.Table, err)
			draft, err := m.BeginEdit(parseRowID(args[0]))
			exitOnErr("Unable to edit "+k.schema.Label, err)
			printJSON(draft)
		},
	}

	imageCmd := &cobra.Command{
		Use:   "image <id> <file>",
		Short: "Upload an image and attach it to a row",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			m := k.open()
			_, err := m.List(cmd.Context())
			exitOnErr("Unable to list "+k.schema.Table, err)
			_, err = m.BeginEdit(parseRowID(args[0]))
			exitOnErr("Unable to edit "+k.schema.Label, err)
			attachImage(cmd, m, args[1])
			saved, err := m.Save(cmd.Context())
			exitOnErr("Unable to save "+k.schema.Label, err)
			printJSON(saved)
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a row after confirmation",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			m := k.open()
			err := m.Delete(cmd.Context(), parseRowID(args[0]))
			if errors.Is(err, manager.ErrNotConfirmed) {
				fmt.Fprintln(os.Stderr, "Cancelled")
				os.Exit(1)
			}
			exitOnErr("Unable to delete "+k.schema.Label, err)
		},
	}

	root.AddCommand(editCmd, imageCmd, deleteCmd)
	return root
}

func attachImage[T content.Record[T]](cmd *cobra.Command, m *manager.Manager[T], path string) {
	file, closeFile, err := openImage(path)
	exitOnErr("Unable to open image", err)
	defer closeFile()
	_, err = m.AttachImage(cmd.Context(), file)
	exitOnErr("Unable to attach image", err)
}

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload an image and print its public URL",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		folder, _ := cmd.Flags().GetString("folder")
		if _, err := media.ParseFolder(folder); err != nil {
			fmt.Fprintln(os.Stderr, "Unknown folder", folder)
			os.Exit(1)
		}

		file, closeFile, err := openImage(args[0])
		exitOnErr("Unable to open image", err)
		defer closeFile()
		exitOnErr("Invalid image", media.ValidateImage(file.ContentType, file.Size))

		url, err := newClient().UploadImage(cmd.Context(), media.Folder(folder), file)
		exitOnErr("Upload failed", err)
		fmt.Println(url)
	},
}

func init() {
	uploadCmd.Flags().String("folder", string(media.FolderProjects), "storage folder: projects, certifications, avatars or skills")

	rootCmd.AddCommand(
		contentKind[project.Project]{
			use:    "projects",
			short:  "Manage projects",
			schema: manager.ProjectSchema(time.Now),
			table: func(c *apiclient.Client) content.Table[project.Project] {
				return apiclient.NewTable[project.Project](c, content.TableProjects)
			},
		}.command(),
		contentKind[skill.Skill]{
			use:    "skills",
			short:  "Manage skills",
			schema: manager.SkillSchema(),
			table: func(c *apiclient.Client) content.Table[skill.Skill] {
				return apiclient.NewTable[skill.Skill](c, content.TableSkills)
			},
		}.command(),
		contentKind[certification.Certification]{
			use:    "certifications",
			short:  "Manage certifications",
			schema: manager.CertificationSchema(),
			table: func(c *apiclient.Client) content.Table[certification.Certification] {
				return apiclient.NewTable[certification.Certification](c, content.TableCertifications)
			},
		}.command(),
		contentKind[profile.Profile]{
			use:    "profile",
			short:  "Manage the profile",
			schema: manager.ProfileSchema(),
			table:  apiclient.NewProfileTable,
		}.command(),
		uploadCmd,
	)
}
