package templates

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// SchemaOption is one entry in the report type selector.
type SchemaOption struct {
	Key      string
	Label    string
	Selected bool
}

// UploadPageData feeds UploadPage.
type UploadPageData struct {
	Schemas     []SchemaOption
	MaxFileSize int64
	ArchiveName string
}

// uploadScript posts the form, downloads the archive on success and swaps
// the server's error fragment into #result otherwise.
const uploadScript = `
(function () {
  var form = document.getElementById("report-form");
  var result = document.getElementById("result");
  var button = form.querySelector("button");

  function filenameFrom(res, fallback) {
    var cd = res.headers.get("Content-Disposition") || "";
    var m = /filename="?([^";]+)"?/.exec(cd);
    return m ? m[1] : fallback;
  }

  form.addEventListener("submit", function (ev) {
    ev.preventDefault();
    var schema = form.elements["schema"].value;
    button.disabled = true;
    button.textContent = "Generating...";
    result.innerHTML = "";

    fetch("/api/reports/" + encodeURIComponent(schema), {
      method: "POST",
      body: new FormData(form),
      headers: { "HX-Request": "true" }
    }).then(function (res) {
      if (!res.ok) {
        return res.text().then(function (html) { result.innerHTML = html; });
      }
      var name = filenameFrom(res, form.dataset.archive);
      var groups = res.headers.get("X-Report-Groups");
      var rows = res.headers.get("X-Report-Rows");
      return res.blob().then(function (blob) {
        var a = document.createElement("a");
        a.href = URL.createObjectURL(blob);
        a.download = name;
        document.body.appendChild(a);
        a.click();
        a.remove();
        URL.revokeObjectURL(a.href);
        var ok = document.createElement("div");
        ok.className = "alert alert-success";
        ok.textContent = "Reports generated: " + rows + " rows across " + groups + " groups.";
        result.appendChild(ok);
      });
    }).catch(function (err) {
      var fail = document.createElement("div");
      fail.className = "alert alert-error";
      fail.textContent = "Upload failed: " + err;
      result.appendChild(fail);
    }).finally(function () {
      button.disabled = false;
      button.textContent = "Generate Reports";
    });
  });
})();
`

// UploadPage renders the report upload form.
func UploadPage(data UploadPageData) templ.Component {
	return Layout("BRM Report Generator", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString(`<h1>BRM Report Generator</h1>`)
		b.WriteString(`<p class="hint">Upload an Excel (.xlsx) or CSV report. You will receive a zip with a consolidated report and one report per BRM.</p>`)
		b.WriteString(`<form id="report-form" method="post" action="/api/reports" enctype="multipart/form-data" data-archive="`)
		b.WriteString(templ.EscapeString(data.ArchiveName))
		b.WriteString(`">`)

		b.WriteString(`<label for="schema">Report type</label><select id="schema" name="schema">`)
		for _, opt := range data.Schemas {
			b.WriteString(`<option value="`)
			b.WriteString(templ.EscapeString(opt.Key))
			b.WriteString(`"`)
			if opt.Selected {
				b.WriteString(` selected`)
			}
			b.WriteString(`>`)
			b.WriteString(templ.EscapeString(opt.Label))
			b.WriteString(`</option>`)
		}
		b.WriteString(`</select>`)

		b.WriteString(`<label for="file">Report file</label>`)
		b.WriteString(`<input id="file" type="file" name="file" accept=".xlsx,.csv" required>`)
		if data.MaxFileSize > 0 {
			b.WriteString(`<div class="hint">Maximum size: `)
			b.WriteString(formatSize(data.MaxFileSize))
			b.WriteString(`</div>`)
		}

		b.WriteString(`<button type="submit">Generate Reports</button></form>`)
		b.WriteString(`<div id="result" aria-live="polite"></div>`)
		b.WriteString(`<script>`)
		b.WriteString(uploadScript)
		b.WriteString(`</script>`)

		_, err := io.WriteString(w, b.String())
		return err
	}))
}

// formatSize renders a byte count in whole MB when it divides evenly.
func formatSize(n int64) string {
	const mb = 1 << 20
	if n >= mb && n%mb == 0 {
		return strconv.FormatInt(n/mb, 10) + " MB"
	}
	return strconv.FormatInt(n, 10) + " bytes"
}
