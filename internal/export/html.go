package export

import (
	"bytes"
	"fmt"
	"html/template"
)

var tableTemplate = template.Must(template.New("table").Parse(`<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <title>{{.Title}}</title>
    <style>
      body { font-family: 'Segoe UI', Roboto, Arial, sans-serif; margin: 24px; color: #1F3D6E; }
      h1 { font-size: 20px; margin-bottom: 16px; }
      table { border-collapse: collapse; width: 100%; }
      th, td { border: 1px solid #C8D7ED; padding: 8px 10px; text-align: left; font-size: 12px; }
      thead { background-color: #E3EFFD; }
      tbody tr:nth-child(even) { background-color: #F8FBFF; }
    </style>
  </head>
  <body>
    <h1>{{.Title}}</h1>
    <table>
      <thead>
        <tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr>
      </thead>
      <tbody>
        {{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}
      </tbody>
    </table>
  </body>
</html>`))

// ToHTMLTable renders rows as a standalone HTML document with inline
// styles. Spreadsheet apps open it directly when saved as .xls.
func ToHTMLTable(rows []Row, title string) (string, error) {
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = r.fields()
	}

	var buf bytes.Buffer
	err := tableTemplate.Execute(&buf, struct {
		Title   string
		Headers []string
		Rows    [][]string
	}{title, Headers, cells})
	if err != nil {
		return "", fmt.Errorf("render table: %w", err)
	}
	return buf.String(), nil
}
