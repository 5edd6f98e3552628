package event

// Events published by the engine itself. Scripts subscribe to them by name
// like to any other event.
const (
	// SceneLoaded carries the scene name once all of its actors are registered.
	SceneLoaded = "scene_loaded"
	// SceneUnloading carries the scene name before its actors are cleared.
	SceneUnloading = "scene_unloading"
)
