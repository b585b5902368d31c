package templates

// Fail renders an error status page.
var Fail = `
{{ define "content" }}
<div class="ui container">
	<br><br>
	<h1>{{ .StatusCode }}: {{ .StatusText }}</h1>
	<div style="color: red; font-weight: bold">
	{{ .Message }}
	</div>
</div>
{{ end }}
`
