package formatter

import (
	"io"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-log-monitor/internal/core/model"
)

type JSONFormatter struct {
	w io.Writer
}

func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{w: w}
}

func (f *JSONFormatter) Format(records []model.LogRecord) error {
	if records == nil {
		records = []model.LogRecord{}
	}
	return writeIndented(f.w, records)
}

func writeIndented(w io.Writer, v interface{}) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
