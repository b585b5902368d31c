package templates

// Login is the sign in page.
const Login = `
{{ define "content" }}
			<div class="user signin">
				<div class="ui middle very relaxed page grid">
					<div class="column">
						<form class="ui form" action="/auth/login" method="post">
							<h3 class="ui top attached header">
								Sign In
							</h3>
							<div class="ui attached segment">
								{{ if .error }}
									<div class="ui negative message">{{ .error }}</div>
								{{ end }}
								{{ if .notice }}
									<div class="ui positive message">{{ .notice }}</div>
								{{ end }}
								<div class="required inline field ">
									<label for="login">Email</label>
									<input id="login" name="login" value="{{ .login }}" autofocus required>
								</div>
								<div class="required inline field ">
									<label for="password">Password</label>
									<input id="password" name="password" type="password" autocomplete="off" value="" required>
								</div>
								<div class="inline field">
									<label></label>
									<button class="ui green button">Sign In</button>
								</div>
								<p>No account yet? <a href="/auth/signup">Sign up</a></p>
							</div>
						</form>
					</div>
				</div>
			</div>
{{ end }}
`

// SignUp is the account creation page.
const SignUp = `
{{ define "content" }}
			<div class="user signup">
				<div class="ui middle very relaxed page grid">
					<div class="column">
						<form class="ui form" action="/auth/signup" method="post">
							<h3 class="ui top attached header">
								Create an account
							</h3>
							<div class="ui attached segment">
								{{ if .error }}
									<div class="ui negative message">{{ .error }}</div>
								{{ end }}
								<div class="inline field ">
									<label for="full_name">Full name</label>
									<input id="full_name" name="full_name" value="{{ .full_name }}">
								</div>
								<div class="required inline field ">
									<label for="email">Email</label>
									<input id="email" name="email" type="email" value="{{ .email }}" required>
								</div>
								<div class="required inline field ">
									<label for="password">Password</label>
									<input id="password" name="password" type="password" autocomplete="off" value="" required>
								</div>
								<div class="required inline field ">
									<label for="role">Account type</label>
									<select id="role" name="role">
										<option value="client" {{ if eq .role "client" }}selected{{ end }}>Client (fill in forms)</option>
										<option value="merchant" {{ if eq .role "merchant" }}selected{{ end }}>Merchant (create forms)</option>
									</select>
								</div>
								<div class="inline field">
									<label></label>
									<button class="ui green button">Sign Up</button>
								</div>
								<p>Already have an account? <a href="/auth/login">Sign in</a></p>
							</div>
						</form>
					</div>
				</div>
			</div>
{{ end }}
`

// CheckEmail is shown after sign up, until the account is confirmed.
const CheckEmail = `
{{ define "content" }}
			<div class="ui middle very relaxed page grid">
				<div class="column">
					<h3 class="ui top attached header">Check your email</h3>
					<div class="ui attached segment">
						<p>We sent you a confirmation link. Please check your email to verify your account.</p>
						<a class="ui basic button" href="/auth/login">Back to Login</a>
					</div>
				</div>
			</div>
{{ end }}
`

// Home is the landing page.
const Home = `
{{ define "content" }}
			<div class="ui container">
				<h1 class="ui header">Build forms. Collect responses.</h1>
				<p>Create, publish, and manage forms effortlessly. Collect submissions from clients and grow your business.</p>
				{{ if .session }}
					<a class="ui green button" href="{{ .session.Dashboard }}">Go to Dashboard</a>
				{{ else }}
					<a class="ui green button" href="/auth/signup">Get Started Free</a>
					<a class="ui basic button" href="/auth/login">Login to Dashboard</a>
				{{ end }}
			</div>
{{ end }}
`
