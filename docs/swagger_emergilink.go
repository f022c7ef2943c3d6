package docs

// @title           EmergiLink API
// @version         1.0
// @description     Emergency response backend: ambulance booking, SOS dispatch with contact fan-out, disaster alerts, hospital and news directory, live websocket feed.

// @contact.name   EmergiLink maintainers

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a token from -issue-token.
