package templates

// Submit renders a published form for submission.  It also shows the
// confirmation once the submission is stored, and the inline message for
// missing or unpublished forms.
const Submit = `
{{ define "content" }}
	<div class="ginform">
		<div class="ui middle very relaxed page grid">
			<div class="column">
				{{ if .unavailable }}
					<div class="ui warning message" id="unavailable">
						<div class="header">{{ .unavailable }}</div>
						<p>{{ .detail }}</p>
					</div>
				{{ else if .submitted }}
					<div class="ui positive message" id="submitted">
						<div class="header">Thank you!</div>
						<p>Your form has been submitted successfully.</p>
						<a class="ui button" href="/">Return to Home</a>
					</div>
				{{ else }}
					<form class="ui form" action="/submit/{{ .form.ID }}" method="post">
						<h3 class="ui top attached header">
							{{ .form.Title }}
						</h3>
						<div class="ui attached segment">
							{{ if .form.Description }}<p class="description">{{ .form.Description }}</p>{{ end }}
							{{ if .alert }}
								<div class="ui negative message" id="alert">{{ .alert }}</div>
							{{ end }}
							{{ range $f := .fields }}
								<div class="{{ if $f.Required }}required{{ end }} field {{ if $f.Error }}error{{ end }}">
									<label for="{{ $f.Name }}">{{ $f.Label }}</label>
									{{ if eq $f.Input "textarea" }}
										<textarea id="{{ $f.Name }}" name="{{ $f.Name }}" placeholder="{{ $f.Placeholder }}" rows="4">{{ $f.Text }}</textarea>
									{{ else if eq $f.Input "select" }}
										<select id="{{ $f.Name }}" name="{{ $f.Name }}">
											<option value="">{{ if $f.Placeholder }}{{ $f.Placeholder }}{{ else }}Select an option{{ end }}</option>
											{{ range $o := $f.Options }}
												<option value="{{ $o.Value }}" {{ if $o.Checked }}selected{{ end }}>{{ $o.Value }}</option>
											{{ end }}
										</select>
									{{ else if eq $f.Input "radio" }}
										{{ range $i, $o := $f.Options }}
											<div class="field">
												<input type="radio" id="{{ $f.Name }}-{{ $i }}" name="{{ $f.Name }}" value="{{ $o.Value }}" {{ if $o.Checked }}checked{{ end }}>
												<label for="{{ $f.Name }}-{{ $i }}">{{ $o.Value }}</label>
											</div>
										{{ end }}
									{{ else if eq $f.Input "checkbox" }}
										{{ range $i, $o := $f.Options }}
											<div class="field">
												<input type="checkbox" id="{{ $f.Name }}-{{ $i }}" name="{{ $f.Name }}" value="{{ $o.Value }}" {{ if $o.Checked }}checked{{ end }}>
												<label for="{{ $f.Name }}-{{ $i }}">{{ $o.Value }}</label>
											</div>
										{{ end }}
									{{ else }}
										<input id="{{ $f.Name }}" name="{{ $f.Name }}" type="{{ $f.Input }}" value="{{ $f.Text }}" placeholder="{{ $f.Placeholder }}">
									{{ end }}
									{{ if $f.Error }}<span class="help error">{{ $f.Error }}</span>{{ end }}
								</div>
							{{ end }}
							<div class="inline field">
								<button class="ui green button">Submit</button>
							</div>
						</div>
					</form>
				{{ end }}
			</div>
		</div>
	</div>
{{ end }}
`
