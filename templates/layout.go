package templates

// Layout is the main site template. It includes the header and footer and
// embeds the content for every other page.
var Layout = `
{{ define "layout" }}
<!DOCTYPE html>
<html>
	<head>
		<meta charset="utf-8">
		<link rel="stylesheet" href="/assets/semantic-2.3.1.min.css">
		<link rel="stylesheet" href="/assets/custom.css">
		<title>{{ if .title }}{{ .title }} · {{ end }}FormBuilder</title>
	</head>
	<body>
		<div class="full height">
			<div class="following bar light">
				<div class="ui container">
					<div class="ui top secondary menu">
						<a class="item brand" href="/">FormBuilder</a>
						{{ if .session }}
							<a class="item" href="{{ .session.Dashboard }}">Dashboard</a>
							<div class="right menu">
								<span class="item">{{ .session.Name }}</span>
								<form class="item" action="/auth/logout" method="post">
									<button class="ui basic button">Sign Out</button>
								</form>
							</div>
						{{ else }}
							<div class="right menu">
								<a class="item" href="/auth/login">Login</a>
								<a class="item" href="/auth/signup">Sign Up</a>
							</div>
						{{ end }}
					</div>
				</div>
			</div>
			{{ template "content" . }}
		</div>
		<footer>
			<div class="ui container">
				<div class="ui center links item brand footertext">© FormBuilder. All rights reserved.</div>
			</div>
		</footer>
	</body>
</html>
{{ end }}
`
