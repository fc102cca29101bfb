package services

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const (
	UsernameMaxLength     = 15
	RoomCodeMinLength     = 4
	RoomCodeMaxLength     = 30
	CodeMaxLength         = 100_000
	ProblemIDMaxLength    = 100
	ConnectionIDMaxLength = 100
	MinPlayers            = 1
	MaxPlayers            = 4
)

// SupportedLanguages is the closed set of sandbox languages.
var SupportedLanguages = []string{"javascript", "python", "rust", "go", "java", "c", "cpp"}

// ValidDifficulties covers queue parameters; "any" is the wildcard.
var ValidDifficulties = []string{"easy", "medium", "hard", "any"}

// ValidGameModes are the two queue modes.
var ValidGameModes = []string{"casual", "ranked"}

var reservedUsernames = map[string]bool{
	"admin": true, "system": true, "bot": true, "moderator": true,
	"mod": true, "null": true, "undefined": true,
}

func isWordChar(r rune, extra ...rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	for _, e := range extra {
		if r == e {
			return true
		}
	}
	return false
}

func allWordChars(s string, extra ...rune) bool {
	for _, r := range s {
		if !isWordChar(r, extra...) {
			return false
		}
	}
	return true
}

// ValidateUsername trims and checks a display name. Reserved system-looking
// names are rejected regardless of case.
func ValidateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)

	if username == "" {
		return "", NewValidationError("username", "Username is required")
	}
	if len(username) > UsernameMaxLength {
		ve := &ValidationError{Field: "username", Message: fmt.Sprintf("Username must be at most %d characters", UsernameMaxLength)}
		return "", ve.WithDetail("max_length", strconv.Itoa(UsernameMaxLength))
	}
	if !allWordChars(username, '_', '-') {
		return "", NewValidationError("username", "Username can only contain letters, numbers, underscores, and hyphens")
	}
	if reservedUsernames[strings.ToLower(username)] {
		return "", NewValidationError("username", "This username is reserved")
	}
	return username, nil
}

// ValidateRoomCode normalizes a room code to uppercase and checks shape.
func ValidateRoomCode(roomCode string) (string, error) {
	roomCode = strings.ToUpper(strings.TrimSpace(roomCode))

	if roomCode == "" {
		return "", NewValidationError("room_code", "Room code is required")
	}
	if len(roomCode) < RoomCodeMinLength {
		return "", NewValidationError("room_code", fmt.Sprintf("Room code must be at least %d characters", RoomCodeMinLength))
	}
	if len(roomCode) > RoomCodeMaxLength {
		return "", NewValidationError("room_code", fmt.Sprintf("Room code must be at most %d characters", RoomCodeMaxLength))
	}
	if !allWordChars(roomCode, '-') {
		return "", NewValidationError("room_code", "Room code can only contain letters, numbers, and hyphens")
	}
	return roomCode, nil
}

// ValidateCode checks submitted source code for size and null bytes.
func ValidateCode(code string) error {
	if code == "" {
		return NewValidationError("code", "Code cannot be empty")
	}
	if len(code) > CodeMaxLength {
		ve := &ValidationError{Field: "code", Message: fmt.Sprintf("Code exceeds maximum length of %d characters", CodeMaxLength)}
		return ve.WithDetail("max_length", strconv.Itoa(CodeMaxLength)).
			WithDetail("current_length", strconv.Itoa(len(code)))
	}
	if strings.ContainsRune(code, 0) {
		return NewValidationError("code", "Code contains invalid characters")
	}
	return nil
}

// ValidateLanguage lowercases and checks a language against the sandbox set.
func ValidateLanguage(language string) (string, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		return "", NewValidationError("language", "Language is required")
	}
	for _, l := range SupportedLanguages {
		if l == language {
			return language, nil
		}
	}
	ve := &ValidationError{Field: "language", Message: fmt.Sprintf("Unsupported language. Supported: %s", strings.Join(SupportedLanguages, ", "))}
	return "", ve.WithDetail("supported", strings.Join(SupportedLanguages, ", "))
}

// ValidateProblemID checks a problem id's shape.
func ValidateProblemID(problemID string) (string, error) {
	problemID = strings.TrimSpace(problemID)
	if problemID == "" {
		return "", NewValidationError("problem_id", "Problem ID is required")
	}
	if len(problemID) > ProblemIDMaxLength {
		return "", NewValidationError("problem_id", "Problem ID is too long")
	}
	if !allWordChars(problemID, '_', '-') {
		return "", NewValidationError("problem_id", "Problem ID can only contain letters, numbers, underscores, and hyphens")
	}
	return problemID, nil
}

// ValidateDifficulty lowercases and checks a queue difficulty.
func ValidateDifficulty(difficulty string) (string, error) {
	difficulty = strings.ToLower(strings.TrimSpace(difficulty))
	for _, d := range ValidDifficulties {
		if d == difficulty {
			return difficulty, nil
		}
	}
	return "", NewValidationError("difficulty", fmt.Sprintf("Invalid difficulty. Valid options: %s", strings.Join(ValidDifficulties, ", ")))
}

// ValidateGameMode lowercases and checks a game mode.
func ValidateGameMode(gameMode string) (string, error) {
	gameMode = strings.ToLower(strings.TrimSpace(gameMode))
	for _, m := range ValidGameModes {
		if m == gameMode {
			return gameMode, nil
		}
	}
	return "", NewValidationError("game_mode", fmt.Sprintf("Invalid game mode. Valid options: %s", strings.Join(ValidGameModes, ", ")))
}

// ValidatePlayerCount checks the 1..4 room size bounds.
func ValidatePlayerCount(count int) error {
	if count < MinPlayers {
		ve := &ValidationError{Field: "players", Message: "At least 1 player required"}
		return ve.WithDetail("min", strconv.Itoa(MinPlayers))
	}
	if count > MaxPlayers {
		ve := &ValidationError{Field: "players", Message: fmt.Sprintf("Maximum %d players allowed", MaxPlayers)}
		return ve.WithDetail("max", strconv.Itoa(MaxPlayers))
	}
	return nil
}

// ValidateConnectionID checks a matchmaking connection id.
func ValidateConnectionID(connectionID string) (string, error) {
	connectionID = strings.TrimSpace(connectionID)
	if connectionID == "" {
		return "", NewValidationError("connection_id", "Connection ID is required")
	}
	if len(connectionID) > ConnectionIDMaxLength {
		return "", NewValidationError("connection_id", "Connection ID is too long")
	}
	if !allWordChars(connectionID, '_') {
		return "", NewValidationError("connection_id", "Invalid connection ID format")
	}
	return connectionID, nil
}

// ValidateUUID parses a UUID path or query parameter.
func ValidateUUID(value, fieldName string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, NewValidationError(fieldName, fmt.Sprintf("Invalid %s format", fieldName))
	}
	return id, nil
}
