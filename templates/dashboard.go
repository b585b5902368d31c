package templates

// MerchantDashboard lists the forms of a merchant.
const MerchantDashboard = `
{{ define "content" }}
	<div class="ui container">
		<div class="ui vertically padded grid head">
			<div class="column">
				<h2 class="ui header">My Forms</h2>
				<a class="ui green button" href="/merchant/forms/new">Create Form</a>
			</div>
		</div>
		{{ if .forms }}
			<table id="forms-table" class="ui unstackable fixed single line table">
				<thead>
					<tr><th>Title</th><th>Status</th><th>Submissions</th><th>Share</th><th></th></tr>
				</thead>
				<tbody>
					{{ range $f := .forms }}
						<tr>
							<td class="name text bold">
								{{ $f.Title }}
								{{ if $f.Description }}<div class="description">{{ $f.Description }}</div>{{ end }}
							</td>
							<td>{{ if $f.IsPublished }}Published{{ else }}Draft{{ end }}</td>
							<td><a href="/merchant/forms/{{ $f.ID }}/submissions">{{ $f.Submissions }}</a></td>
							<td>{{ if $f.IsPublished }}<a href="/submit/{{ $f.ID }}">/submit/{{ $f.ID }}</a>{{ end }}</td>
							<td>
								<a class="ui mini basic button" href="/merchant/forms/{{ $f.ID }}/edit">Edit</a>
								<form class="inline" action="/merchant/forms/{{ $f.ID }}/publish" method="post">
									<button class="ui mini basic button">{{ if $f.IsPublished }}Unpublish{{ else }}Publish{{ end }}</button>
								</form>
								<form class="inline" action="/merchant/forms/{{ $f.ID }}/delete" method="post">
									<button class="ui mini red basic button">Delete</button>
								</form>
							</td>
						</tr>
					{{ end }}
				</tbody>
			</table>
		{{ else }}
			<div class="ui segment">
				<h3>No forms yet</h3>
				<p>Create your first form to start collecting submissions</p>
			</div>
		{{ end }}
	</div>
{{ end }}
`

// ClientDashboard lists the submissions of a client.
const ClientDashboard = `
{{ define "content" }}
	<div class="ui container">
		<h2 class="ui header">My Submissions</h2>
		{{ if .submissions }}
			<table id="submissions-table" class="ui unstackable fixed single line table">
				<tbody>
					{{ range $s := .submissions }}
						<tr>
							<td class="name text bold">{{ $s.FormTitle }}</td>
							<td>{{ if $s.FormDescription }}{{ $s.FormDescription }}{{ else }}No description{{ end }}</td>
							<td>{{ $s.SubmittedAt }}</td>
							<td><span class="ui label">Submitted</span></td>
						</tr>
					{{ end }}
				</tbody>
			</table>
		{{ else }}
			<div class="ui segment">
				<h3>No submissions yet</h3>
				<p>Forms you fill in will appear here</p>
			</div>
		{{ end }}
	</div>
{{ end }}
`
