package config

// LogConfig selects zerolog level, output and format.
type LogConfig struct {
    Level    string // debug, info, warn, error
    Format   string // json or console; empty picks console in development
    Output   string // stdout, stderr or file
    FilePath string // used when Output is file
}

func LoadLogConfig() LogConfig {
    return LogConfig{
        Level:    envStr("LOG_LEVEL", "info"),
        Format:   envStr("LOG_FORMAT", ""),
        Output:   envStr("LOG_OUTPUT", "stdout"),
        FilePath: envStr("LOG_FILE", ""),
    }
}
