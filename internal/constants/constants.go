// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort              = "8000"
	DefaultDBPath            = "strume.db"
	DefaultWorkDir           = "outputs"
	DefaultStoredDir         = "stored"
	DefaultMetadataFile      = "metadata.json"
	DefaultFFmpegPath        = "ffmpeg"
	DefaultFpcalcPath        = "fpcalc"
	DefaultDemucsPath        = "demucs"
	DefaultDemucsModel       = "htdemucs"
	DefaultDemucsDevice      = "cpu"
	DefaultModelSampleRate   = 44100
	DefaultModelChannels     = 2
	DefaultConcurrency       = 1
	DefaultPollInterval      = 500 * time.Millisecond
	DefaultProgressRetention = 10 * time.Minute
	DefaultMaxUploadMB       = 200
	DefaultStoredFormat      = FormatWAV
	DefaultAcoustIDURL       = "https://api.acoustid.org/v2/lookup"
	DefaultMusicBrainzURL    = "https://musicbrainz.org/ws/2"
	DefaultLookupCacheTTL    = 7 * 24 * time.Hour
	DefaultCORSOrigin        = "http://localhost:5173"
	DefaultHTTPTimeout       = 30 * time.Second
	DefaultRetryCount        = 3
	DefaultRetryBase         = 1 * time.Second
	EvictionInterval         = 1 * time.Minute
)

// Progress checkpoints written while a separation job runs.
const (
	ProgressLoaded    = 10
	ProgressDecoded   = 30
	ProgressSeparated = 70
	ProgressSaved     = 95
	ProgressComplete  = 100
	ProgressFailed    = -1
)

// Stored artifact formats
const (
	FormatWAV  = "wav"
	FormatFLAC = "flac"
	FormatMP3  = "mp3"
)

// Artifact naming
const (
	InstrumentalSuffix = "_instrumental"
	StoredPrefix       = "instrumental_"
	StoredTimeLayout   = "20060102_150405"
	UnknownValue       = "Unknown"
)

// MIME Types
const (
	MimeTypeWAV  = "audio/wav"
	MimeTypeFLAC = "audio/flac"
	MimeTypeMP3  = "audio/mpeg"
	MimeTypeJSON = "application/json"
	MimeTypeSSE  = "text/event-stream"
)

// Database
const (
	SeparationsTable = "separations"
	CacheTable       = "cache"
)

// File Extensions
const (
	ExtWAV  = ".wav"
	ExtFLAC = ".flac"
	ExtMP3  = ".mp3"
)

// File Permissions
const (
	DirPermissions  = 0755
	FilePermissions = 0644
)

// Normalization
const NormalizeEpsilon = 1e-8

// Characters to sanitize from filesystem paths
const InvalidPathChars = "<>:\"/\\|?*"
