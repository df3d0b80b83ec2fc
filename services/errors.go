package services

import (
	"errors"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidDates      = errors.New("end date must not be before start date")
	ErrNotCreator        = errors.New("only the challenge creator can do this")
	ErrNotCurrentCreator = errors.New("only the current creator can create today's challenge")
	ErrAlreadyJoined     = errors.New("user already joined this challenge")
	ErrChallengeClosed   = errors.New("challenge is not open for joining")
	ErrNotParticipant    = errors.New("user is not an active participant")
	ErrPostNotLinked     = errors.New("post saved but not linked to challenge")
)
