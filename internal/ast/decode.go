package ast

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a serialization of the query AST.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatCUE     Format = "cue"
	FormatMsgpack Format = "msgpack"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatYAML, FormatCUE, FormatMsgpack}

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	case ".msgpack", ".mp":
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("unsupported query file extension %q (want one of .json .yaml .yml .cue .msgpack)", filepath.Ext(path))
	}
}

// Decode parses data in the given format. filename is used for diagnostics only.
func Decode(format Format, data []byte, filename string) (Value, error) {
	switch format {
	case FormatJSON:
		return DecodeJSON(data)
	case FormatYAML:
		return DecodeYAML(data)
	case FormatCUE:
		return DecodeCUE(data, filename)
	case FormatMsgpack:
		return DecodeMsgpack(data)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func childPath(path, key string) string {
	return path + "." + key
}

func indexPath(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}
