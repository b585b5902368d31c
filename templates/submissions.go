package templates

// Submissions lists the submissions of one form with a preview of the first
// answers, and links to the CSV export.
const Submissions = `
{{ define "content" }}
	<div class="repository file list">
		<div class="ui container">
			<h2 class="ui header">{{ .form.Title }}</h2>
			<p id="repo-desc">
				<a href="/merchant/dashboard">Back to dashboard</a>
			</p>
			{{ if .submissions }}
				<p>Total submissions: {{ len .submissions }}
					<a class="ui mini basic button" href="/merchant/forms/{{ .form.ID }}/submissions.csv">Export to CSV</a>
				</p>
				{{ range $s := .submissions }}
					<div class="ui segment submission">
						<div class="meta">
							<span>{{ $s.SubmittedAt }}</span>
							<strong>{{ $s.Submitter }}</strong>
							{{ if $s.Guest }}<span class="ui mini label">Guest</span>{{ end }}
						</div>
						<details>
							<summary>
								{{ range $a := $s.Preview }}
									<div><span class="label">{{ $a.Label }}:</span> {{ $a.Value }}</div>
								{{ end }}
								{{ if $s.More }}<div class="more">{{ $s.More }}</div>{{ end }}
							</summary>
							<table class="ui very basic table">
								{{ range $a := $s.Answers }}
									<tr><td>{{ $a.Label }}</td><td>{{ if $a.Value }}{{ $a.Value }}{{ else }}No answer{{ end }}</td></tr>
								{{ end }}
							</table>
						</details>
					</div>
				{{ end }}
			{{ else }}
				<div class="ui segment">
					<h3>No submissions yet</h3>
					<p>Submissions will appear here once clients start filling out your form</p>
				</div>
			{{ end }}
		</div>
	</div>
{{ end }}
`
