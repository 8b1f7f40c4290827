package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/flowstudio"
	"github.com/aretw0/flowstudio/internal/presentation/graph"
	"github.com/aretw0/flowstudio/pkg/domain"
)

// ErrValidationFailed is returned by Validate when the flow has errors.
var ErrValidationFailed = errors.New("validation failed")

// IO carries the streams of a command.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// ValidateOptions configures Validate.
type ValidateOptions struct {
	Path       string
	UILanguage string
	Format     ReportFormat
}

// Validate prints the validation report of the document at opts.Path and
// returns ErrValidationFailed when the flow has errors.
func Validate(studio *flowstudio.Studio, opts ValidateOptions, streams IO) error {
	doc, err := ReadDocument(opts.Path, streams.In)
	if err != nil {
		return err
	}
	report := studio.ValidateFlow(doc.Flow(), opts.UILanguage)
	if err := WriteReport(streams.Out, report, opts.Format); err != nil {
		return err
	}
	if !report.OK() {
		return ErrValidationFailed
	}
	return nil
}

// ValidateWatch validates the document and then again after every change of
// the file, until ctx is done.
func ValidateWatch(ctx context.Context, studio *flowstudio.Studio, opts ValidateOptions, streams IO, logger *slog.Logger) error {
	if opts.Path == Stdin {
		return errors.New("cannot watch standard input")
	}
	changes, err := WatchFile(ctx, opts.Path, logger)
	if err != nil {
		return err
	}

	run := func() {
		err := Validate(studio, opts, streams)
		if err != nil && !errors.Is(err, ErrValidationFailed) {
			// mid-edit documents may not parse yet
			fmt.Fprintf(streams.Err, "Error: %v\n", err)
		}
	}

	run()
	printSystemMessage(streams.Err, "Watching '%s' for changes...", opts.Path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			printSystemMessage(streams.Err, "Change detected in '%s'.", opts.Path)
			run()
		}
	}
}

// Clone duplicates the nodes named by ids inside the document and emits it.
// The mapping from original to new IDs is printed to streams.Err.
func Clone(studio *flowstudio.Studio, path string, ids []string, write bool, streams IO) error {
	doc, err := ReadDocument(path, streams.In)
	if err != nil {
		return err
	}
	flow, mapping, err := studio.Duplicate(*doc.Flow(), ids)
	if err != nil {
		return err
	}
	doc.Config.UserFlowConfig = flow

	for _, id := range ids {
		fmt.Fprintf(streams.Err, "%s -> %s\n", id, mapping[id])
	}
	return doc.Emit(streams.Out, write)
}

// Place prints a free canvas position for a new node of the document.
func Place(studio *flowstudio.Studio, path string, streams IO) error {
	doc, err := ReadDocument(path, streams.In)
	if err != nil {
		return err
	}
	return json.NewEncoder(streams.Out).Encode(studio.Place(doc.Flow()))
}

// ApplyTemplate merges the named template into the document and emits it.
func ApplyTemplate(studio *flowstudio.Studio, path, name string, write bool, streams IO) error {
	doc, err := ReadDocument(path, streams.In)
	if err != nil {
		return err
	}
	flow, err := studio.ApplyTemplate(*doc.Flow(), name)
	if err != nil {
		return err
	}
	doc.Config.UserFlowConfig = flow
	return doc.Emit(streams.Out, write)
}

// Prune drops dangling links and coordinates of removed nodes and emits the
// document.
func Prune(path string, write bool, streams IO) error {
	doc, err := ReadDocument(path, streams.In)
	if err != nil {
		return err
	}
	flow, err := domain.Prune(*doc.Flow())
	if err != nil {
		return err
	}
	doc.Config.UserFlowConfig = flow
	return doc.Emit(streams.Out, write)
}

// Graph prints the Mermaid flowchart of the document. Invalid nodes are
// highlighted.
func Graph(studio *flowstudio.Studio, path, selected, lang string, streams IO) error {
	doc, err := ReadDocument(path, streams.In)
	if err != nil {
		return err
	}
	overlay := &graph.GraphOverlay{SelectedNode: selected, Language: lang}
	for _, n := range studio.ValidateFlow(doc.Flow(), "").Failed() {
		overlay.InvalidNodes = append(overlay.InvalidNodes, n.ID)
	}
	_, err = io.WriteString(streams.Out, graph.GenerateMermaid(doc.Flow(), overlay))
	return err
}

// Templates prints the names of the registered templates.
func Templates(studio *flowstudio.Studio, streams IO) {
	for _, name := range studio.Templates().Names() {
		fmt.Fprintln(streams.Out, name)
	}
}
