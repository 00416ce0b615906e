package cropui

import "html/template"

type pageData struct {
	Done     bool
	Index    int
	Total    int
	Name     string
	Split    string
	SplitY   int
	Width    int
	Height   int
	Saved    string
	Error    string
	Revision int
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Benson crop</title>
<style>
body { font-family: sans-serif; margin: 1.5em; }
.pane { display: inline-block; vertical-align: top; margin-right: 2em; position: relative; }
.split { position: absolute; left: 0; height: 2px; background: red; pointer-events: none; }
.error { color: #b00; }
</style>
</head>
<body>
{{if .Done}}
<h1>Completed</h1>
<p>✅ No more images. All crops have been saved; you can close this window.</p>
{{else}}
<h1>Image {{.Index}} of {{.Total}}: {{.Name}}</h1>
<p>Click on the page where the crop should start. Split: {{.Split}}{{if .Saved}}, saved to {{.Saved}}{{end}}</p>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<div class="pane">
<form method="post" action="/click">
<input type="image" name="page" src="/image?r={{.Revision}}" width="{{.Width}}" height="{{.Height}}" alt="detected page">
</form>
<div class="split" style="top: {{.SplitY}}px; width: {{.Width}}px"></div>
</div>
<div class="pane">
<img src="/preview?r={{.Revision}}" width="{{.Width}}" alt="crop preview">
</div>
<form method="post" action="/next">
<button type="submit">Next image</button>
</form>
{{end}}
</body>
</html>
`))
