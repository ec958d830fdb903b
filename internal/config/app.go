package config

import "os"

func BasePath() string {
	return os.Getenv("APP_BASE_PATH")
}

// Port is the listen address of the HTTP service, ":8080" unless APP_PORT
// is set.
func Port() string {
	port, ok := os.LookupEnv("APP_PORT")
	if !ok || port == "" {
		return ":8080"
	}
	return port
}

// SaveDir is where the console keeps its saves.
func SaveDir() string {
	dir, ok := os.LookupEnv("MAZE_SAVE_DIR")
	if !ok || dir == "" {
		return "saves"
	}
	return dir
}
