package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/flowstudio/pkg/domain"
)

// Stdin is the path that reads the document from standard input.
const Stdin = "-"

// ErrNotBotConfig is returned for JSON that is neither a bot config nor a
// bare user flow config.
var ErrNotBotConfig = errors.New("document is not a bot config")

// Document is a bot config read from a file. Bare documents hold only the
// user flow config and are written back the same way.
type Document struct {
	Config domain.BotConfig
	Bare   bool
	Path   string
}

// Flow returns the flow of the document.
func (d *Document) Flow() *domain.UserFlowConfig {
	return &d.Config.UserFlowConfig
}

// ReadDocument reads the document at path, or from stdin when path is "-".
func ReadDocument(path string, stdin io.Reader) (*Document, error) {
	var data []byte
	var err error
	if path == Stdin {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseDocument(path, data)
}

// ParseDocument decodes data as a bot config, or as a bare user flow config
// when it has no user_flow_config key.
func ParseDocument(path string, data []byte) (*Document, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotBotConfig, path, err)
	}

	d := &Document{Path: path}
	if _, ok := keys["user_flow_config"]; ok {
		if err := json.Unmarshal(data, &d.Config); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
		return d, nil
	}
	_, hasEntrypoints := keys["entrypoints"]
	_, hasBlocks := keys["blocks"]
	if !hasEntrypoints && !hasBlocks {
		return nil, fmt.Errorf("%w: %s has neither user_flow_config nor entrypoints", ErrNotBotConfig, path)
	}
	d.Bare = true
	if err := json.Unmarshal(data, &d.Config.UserFlowConfig); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return d, nil
}

// Marshal encodes the document in its original shape.
func (d *Document) Marshal() ([]byte, error) {
	var v any = d.Config
	if d.Bare {
		v = d.Config.UserFlowConfig
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Emit writes the document back to its file when write is set, or to out.
func (d *Document) Emit(out io.Writer, write bool) error {
	data, err := d.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if write && d.Path != Stdin {
		return os.WriteFile(d.Path, data, 0o644)
	}
	_, err = out.Write(data)
	return err
}
