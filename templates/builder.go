package templates

// Builder is the form editor.  Every button posts the complete field sequence
// together with the requested action, so the editing state survives each
// round trip.  The first submit button saves, so pressing Enter in an input
// saves the form instead of running a field action.
const Builder = `
{{ define "content" }}
	<div class="ginform">
		<div class="ui middle very relaxed page grid">
			<div class="column">
				<form class="ui form" id="builder" action="{{ .action }}" method="post">
					<button type="submit" id="default-action" name="action" value="save" tabindex="-1" aria-hidden="true" style="position: absolute; left: -9999px;">Save</button>
					<h3 class="ui top attached header">
						{{ if .editing }}Edit Form{{ else }}Create Form{{ end }}
					</h3>
					<div class="ui attached segment">
						{{ if .error }}
							<div class="ui negative message" id="builder-error">{{ .error }}</div>
						{{ end }}
						<div class="required field">
							<label for="title">Form Title</label>
							<input id="title" name="title" value="{{ .form_title }}" placeholder="e.g., Contact Form, Survey, Registration">
						</div>
						<div class="field">
							<label for="description">Description</label>
							<textarea id="description" name="description" rows="3" placeholder="Optional description for your form">{{ .description }}</textarea>
						</div>
					</div>
					<h4 class="ui attached header">Form Fields</h4>
					<div class="ui attached segment">
						{{ range $f := .fields }}
							<div class="ui segment builder-field">
								<input type="hidden" name="field_id" value="{{ $f.ID }}">
								<div class="two fields">
									<div class="required field">
										<label for="field_type-{{ $f.Index }}">Field Type</label>
										<select id="field_type-{{ $f.Index }}" name="field_type">
											{{ range $t := $.types }}
												<option value="{{ $t.Type }}" {{ if eq $t.Type $f.Type }}selected{{ end }}>{{ $t.Title }}</option>
											{{ end }}
										</select>
									</div>
									<div class="required field">
										<label for="label-{{ $f.Index }}">Label</label>
										<input id="label-{{ $f.Index }}" name="label" value="{{ $f.Label }}" placeholder="e.g., Full Name, Email Address">
									</div>
								</div>
								<div class="field">
									<label for="placeholder-{{ $f.Index }}">Placeholder</label>
									<input id="placeholder-{{ $f.Index }}" name="placeholder" value="{{ $f.Placeholder }}" placeholder="Optional placeholder text">
								</div>
								<div class="field">
									<label for="options-{{ $f.Index }}">Options (one per line; Dropdown, Checkbox and Radio Buttons only)</label>
									<textarea id="options-{{ $f.Index }}" name="options" rows="3">{{ $f.OptionsText }}</textarea>
								</div>
								<div class="inline field">
									<input id="required-{{ $f.Index }}" type="checkbox" name="required" value="{{ $f.Index }}" {{ if $f.Required }}checked{{ end }}>
									<label for="required-{{ $f.Index }}">Required field</label>
								</div>
								<button class="ui mini basic button" name="action" value="up-{{ $f.Index }}" {{ if $f.First }}disabled{{ end }}>Move up</button>
								<button class="ui mini basic button" name="action" value="down-{{ $f.Index }}" {{ if $f.Last }}disabled{{ end }}>Move down</button>
								<button class="ui mini red basic button" name="action" value="remove-{{ $f.Index }}">Remove</button>
							</div>
						{{ else }}
							<p>No fields added yet. Click "Add Field" to get started.</p>
						{{ end }}
						<button class="ui basic button" name="action" value="add">Add Field</button>
					</div>
					<div class="ui bottom attached segment">
						<a class="ui basic button" href="/merchant/dashboard">Cancel</a>
						<button class="ui green button" name="action" value="save">{{ if .editing }}Update Form{{ else }}Create Form{{ end }}</button>
					</div>
				</form>
			</div>
		</div>
	</div>
{{ end }}
`
