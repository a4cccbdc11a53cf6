package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// Output форматирует результаты команд: таблицы для чтения глазами,
// JSON для скриптов. Данные идут в stdout, служебные сообщения — в stderr,
// чтобы вывод можно было передавать по конвейеру.
type Output struct {
	jsonMode bool
	out      io.Writer
	msg      io.Writer
}

// NewOutput создаёт Output. При jsonMode=true Print выводит JSON
// вместо таблицы.
func NewOutput(jsonMode bool) *Output {
	return &Output{
		jsonMode: jsonMode,
		out:      os.Stdout,
		msg:      os.Stderr,
	}
}

// Print выводит список в виде таблицы либо JSON в зависимости от режима.
// Пустой список в табличном режиме сообщает об отсутствии данных
// вместо таблицы из одних заголовков.
func (o *Output) Print(headers []string, rows [][]string, jsonData any) {
	if o.jsonMode {
		o.JSON(jsonData)
		return
	}
	if len(rows) == 0 {
		fmt.Fprintln(o.msg, "no results")
		return
	}
	o.Table(headers, rows)
}

// Table выводит данные через tabwriter: заголовки, разделитель
// по ширине заголовков, строки.
func (o *Output) Table(headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(o.out, 0, 0, 2, ' ', 0)
	line := func(cells []string) {
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	line(headers)

	sep := make([]string, len(headers))
	for i, h := range headers {
		sep[i] = strings.Repeat("-", len(h))
	}
	line(sep)

	for _, row := range rows {
		line(row)
	}

	tw.Flush()
}

// JSON выводит значение с отступами. Ошибка сериализации уходит
// в stderr: обрезанный JSON хуже, чем его отсутствие.
func (o *Output) JSON(v any) {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		o.Error("failed to encode JSON: " + err.Error())
	}
}

// Success выводит сообщение об успехе в stderr.
func (o *Output) Success(msg string) {
	fmt.Fprintln(o.msg, msg)
}

// Error выводит сообщение об ошибке в stderr.
func (o *Output) Error(msg string) {
	fmt.Fprintln(o.msg, "Error: "+msg)
}
