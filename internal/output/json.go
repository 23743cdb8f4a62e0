package output

import (
	"encoding/json"

	"github.com/foxholm/foxholm/internal/processing"
	"github.com/foxholm/foxholm/internal/tool"
)

// JSONFormatter renders values as the API would return them.
type JSONFormatter struct {
	Indent bool
}

func (f *JSONFormatter) FormatTools(tools []*tool.ToolConfig) (string, error) {
	if tools == nil {
		tools = []*tool.ToolConfig{}
	}
	return f.encode(tools)
}

func (f *JSONFormatter) FormatTool(cfg *tool.ToolConfig) (string, error) {
	return f.encode(cfg)
}

func (f *JSONFormatter) FormatResult(result *processing.Result) (string, error) {
	return f.encode(result)
}

func (f *JSONFormatter) encode(v any) (string, error) {
	var (
		data []byte
		err  error
	)
	if f.Indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
