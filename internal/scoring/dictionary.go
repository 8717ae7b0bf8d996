package scoring

// techKeywords are canonical tokens (after textnorm folding) recognized in free text.
var techKeywords = map[string]struct{}{
	// languages
	"go": {}, "python": {}, "java": {}, "javascript": {}, "typescript": {}, "c++": {}, "c#": {},
	"ruby": {}, "php": {}, "rust": {}, "kotlin": {}, "swift": {}, "scala": {}, "sql": {},
	"html": {}, "css": {},
	// frameworks
	"react": {}, "angular": {}, "vue": {}, "node": {}, "express": {}, "django": {},
	"flask": {}, "fastapi": {}, "spring": {}, "rails": {}, "laravel": {}, "redux": {},
	"graphql": {}, "tailwind": {},
	// data
	"postgresql": {}, "mysql": {}, "mongodb": {}, "redis": {}, "elasticsearch": {}, "kafka": {},
	"rabbitmq": {}, "spark": {},
	// tooling and platforms
	"docker": {}, "kubernetes": {}, "terraform": {}, "ansible": {}, "aws": {}, "gcp": {},
	"azure": {}, "linux": {}, "git": {}, "jenkins": {}, "grpc": {}, "microservices": {},
	"jest": {}, "figma": {},
}

// IsTechKeyword reports whether token is in the technology dictionary.
func IsTechKeyword(token string) bool {
	_, ok := techKeywords[token]
	return ok
}
