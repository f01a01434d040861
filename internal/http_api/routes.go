package http_api

// routes sets up the routes for the HTTP server.
func (s *HTTPServer) routes() {
	s.router.GET("/", s.status)
	s.router.POST("/", s.earn)
}
