package engine

import "errors"

var (
	ErrInvalidSize       = errors.New("invalid grid size")
	ErrInvalidMove       = errors.New("invalid move")
	ErrCorruptState      = errors.New("corrupt game state")
	ErrUnreachable       = errors.New("goal unreachable")
	ErrIO                = errors.New("i/o failure")
	ErrInvalidGrid       = errors.New("invalid grid")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrNotStarted        = errors.New("game not started")
)
