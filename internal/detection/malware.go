package detection

import (
	"strings"

	"signalguard/pkg/logger"
)

// MalwareResult is the attachment scanner's output
type MalwareResult struct {
	Score     float64  `json:"score"`
	Risk      string   `json:"risk"`
	Findings  []string `json:"findings"`
	Extension string   `json:"extension"`
}

var malwareRiskScores = map[string]float64{
	"CRITICAL": 95,
	"HIGH":     80,
	"MEDIUM":   45,
	"LOW":      5,
}

// MalwareScanner checks attachment names and hashes against known-bad
// indicators
type MalwareScanner struct {
	dangerousExts  map[string]bool
	archiveExts    map[string]bool
	macroExts      map[string]bool
	knownBadHashes map[string]bool
	logger         *logger.Logger
}

// NewMalwareScanner builds the extension and hash tables
func NewMalwareScanner(log *logger.Logger) *MalwareScanner {
	return &MalwareScanner{
		dangerousExts: map[string]bool{
			"exe": true, "scr": true, "bat": true, "cmd": true, "com": true,
			"pif": true, "vbs": true, "js": true, "jar": true, "msi": true,
			"dll": true, "ps1": true, "hta": true,
		},
		archiveExts: map[string]bool{
			"zip": true, "rar": true, "7z": true, "iso": true, "img": true,
		},
		macroExts: map[string]bool{
			"docm": true, "xlsm": true, "pptm": true,
		},
		knownBadHashes: map[string]bool{
			// EICAR test file
			"44d88612fea8a8f36de82e1278abb02f": true,
			"275a021bbfb6489e54d471899f7db9d1663fc695ec2fe2a2c4538aabf651fd0f": true,
		},
		logger: log.WithComponent("malware-scanner"),
	}
}

// Scan scores an attachment by name and optional hash
func (s *MalwareScanner) Scan(filename, hash string) MalwareResult {
	result := MalwareResult{Risk: "LOW", Findings: []string{}}

	if hash != "" && s.knownBadHashes[strings.ToLower(strings.TrimSpace(hash))] {
		result.Risk = "CRITICAL"
		result.Findings = append(result.Findings, "known_bad_hash")
		result.Score = malwareRiskScores["CRITICAL"]
		return result
	}

	name := strings.ToLower(strings.TrimSpace(filename))
	if name == "" {
		result.Score = malwareRiskScores["LOW"]
		return result
	}

	parts := strings.Split(name, ".")
	if len(parts) < 2 {
		result.Score = malwareRiskScores["LOW"]
		return result
	}
	ext := parts[len(parts)-1]
	result.Extension = ext

	switch {
	case s.dangerousExts[ext]:
		result.Risk = "HIGH"
		result.Findings = append(result.Findings, "dangerous_extension")
		// Executable hiding behind a document extension
		if len(parts) >= 3 {
			result.Risk = "CRITICAL"
			result.Findings = append(result.Findings, "double_extension")
		}
	case s.macroExts[ext]:
		result.Risk = "MEDIUM"
		result.Findings = append(result.Findings, "macro_enabled_document")
	case s.archiveExts[ext]:
		result.Risk = "MEDIUM"
		result.Findings = append(result.Findings, "archive_container")
	}

	result.Score = malwareRiskScores[result.Risk]
	return result
}
