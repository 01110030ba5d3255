package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"strings"

	"pcbfuse/internal/errors"
)

// NetlistFormat identifies how a netlist export was decoded
type NetlistFormat string

const (
	// FormatENet is the EasyEDA JSON export (.enet / .json)
	FormatENet NetlistFormat = "enet"
	// FormatText is the plain text block export: a "NET <name>" header
	// line followed by REF.PIN tokens
	FormatText NetlistFormat = "text"
)

// ENetComponent is one component entry of an EasyEDA netlist export,
// keyed upstream by an opaque unique id.
type ENetComponent struct {
	Props map[string]interface{} `json:"props"`
	Pins  map[string]interface{} `json:"pins"`
}

// NetBlock is one net of a text netlist: the declared name and the raw
// member tokens, not yet split into designator and pin.
type NetBlock struct {
	Name   string
	Tokens []string
}

// Netlist is a structurally decoded netlist export
type Netlist struct {
	Path       string
	Format     NetlistFormat
	Components map[string]ENetComponent // enet format
	Blocks     []NetBlock               // text format
}

// ReadNetlist decodes a netlist export, sniffing the format from the
// first non-blank byte: '{' means EasyEDA JSON, anything else the text
// block format.
func ReadNetlist(path string) (*Netlist, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.InputMissing, "file not found", err).WithFile(path)
		}
		return nil, errors.New(errors.InputUnreadable, "cannot read file", err).WithFile(path)
	}

	content := bytes.TrimSpace(raw)
	if len(content) == 0 {
		return nil, errors.New(errors.InputEmpty, "netlist is empty", nil).WithFile(path)
	}

	if content[0] == '{' {
		return readENet(path, content)
	}
	return readTextNetlist(path, content)
}

func readENet(path string, content []byte) (*Netlist, error) {
	components := make(map[string]ENetComponent)

	if err := json.Unmarshal(content, &components); err != nil {
		// Some exports are JSON-lines: one single-entry object per line.
		components = make(map[string]ENetComponent)
		for _, line := range bytes.Split(content, []byte("\n")) {
			line = bytes.TrimSpace(line)
			if len(line) == 0 {
				continue
			}
			var item map[string]ENetComponent
			if err := json.Unmarshal(line, &item); err != nil {
				continue
			}
			for uid, comp := range item {
				components[uid] = comp
			}
		}
		if len(components) == 0 {
			return nil, errors.New(errors.NetlistInvalid, "cannot decode netlist JSON", err).WithFile(path)
		}
	}

	if len(components) == 0 {
		return nil, errors.New(errors.InputEmpty, "netlist has no components", nil).WithFile(path)
	}

	return &Netlist{Path: path, Format: FormatENet, Components: components}, nil
}

func readTextNetlist(path string, content []byte) (*Netlist, error) {
	var blocks []NetBlock
	current := -1

	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if strings.EqualFold(fields[0], "NET") {
			name := ""
			if len(fields) > 1 {
				name = fields[1]
			}
			blocks = append(blocks, NetBlock{Name: name})
			current = len(blocks) - 1
			if len(fields) > 2 {
				blocks[current].Tokens = append(blocks[current].Tokens, fields[2:]...)
			}
			continue
		}

		if current < 0 {
			// Tokens before any header land in an unnamed block; the
			// normalizer flags them.
			blocks = append(blocks, NetBlock{})
			current = 0
		}
		blocks[current].Tokens = append(blocks[current].Tokens, fields...)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.New(errors.InputUnreadable, "cannot scan netlist", err).WithFile(path)
	}

	if len(blocks) == 0 {
		return nil, errors.New(errors.InputEmpty, "netlist has no net blocks", nil).WithFile(path)
	}

	return &Netlist{Path: path, Format: FormatText, Blocks: blocks}, nil
}
