// Package types holds the configuration structures shared across
// commands.
package types

// AppConfig represents the complete application configuration
type AppConfig struct {
	Verbose  bool           `mapstructure:"verbose"`
	Config   string         `mapstructure:"config"`
	Project  ProjectConfig  `mapstructure:"project" validate:"required"`
	Data     DataConfig     `mapstructure:"data" validate:"required"`
	Pomodoro PomodoroConfig `mapstructure:"pomodoro" validate:"required"`
}

// ProjectConfig holds project-related settings
type ProjectConfig struct {
	RootDir string `mapstructure:"rootDir" validate:"required"`
}

// DataConfig holds data storage configuration
type DataConfig struct {
	// File is the SQLite task database, relative to the project root
	// unless absolute.
	File string `mapstructure:"file" validate:"required"`
	// StudyFile is the JSON file holding the cumulative study-time total.
	StudyFile string `mapstructure:"studyFile" validate:"required"`
}

// PomodoroConfig holds the timer durations, in minutes as users write
// them in config files. Conversion to seconds happens where the session
// machine is built.
type PomodoroConfig struct {
	FocusMinutes      int `mapstructure:"focusMinutes" validate:"required,min=1"`
	ShortBreakMinutes int `mapstructure:"shortBreakMinutes" validate:"required,min=1"`
	LongBreakMinutes  int `mapstructure:"longBreakMinutes" validate:"required,min=1"`
	// Cadence is the number of focus phases before a long break.
	Cadence int `mapstructure:"cadence" validate:"required,min=1"`
}
