package timeline

import lumberjack "gopkg.in/natefinch/lumberjack.v2"

// FileSink is a rotating-file destination for a serialized timeline or
// graph report. Backups are not compressed. Nothing in this repository
// writes through it: cmd/viroprof writes reports to stdout or a plain file.
type FileSink struct {
	logger *lumberjack.Logger
}

// NewFileSink opens (or creates) a rotating log file at path. maxSizeMB
// and maxBackups of 0 select lumberjack's defaults (100 MB, no limit).
func NewFileSink(path string, maxSizeMB, maxBackups int) *FileSink {
	return &FileSink{logger: &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   false,
	}}
}

func (s *FileSink) Write(p []byte) (int, error) { return s.logger.Write(p) }

// Close flushes and closes the underlying rotating file.
func (s *FileSink) Close() error { return s.logger.Close() }
