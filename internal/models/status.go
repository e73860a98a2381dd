package models

import "errors"

// ErrIllegalTransition is returned whenever a status change would skip
// or reverse a lifecycle step (e.g. imported before exported).
var ErrIllegalTransition = errors.New("illegal status transition")

type FileStatus string

const (
	FileStatusPending    FileStatus = "pending"
	FileStatusProcessing FileStatus = "processing"
	FileStatusCompleted  FileStatus = "completed"
	FileStatusError      FileStatus = "error"
)

var fileTransitions = map[FileStatus][]FileStatus{
	FileStatusPending:    {FileStatusProcessing, FileStatusError},
	FileStatusProcessing: {FileStatusCompleted, FileStatusError},
	FileStatusError:      {FileStatusProcessing},
	FileStatusCompleted:  {},
}

func (s FileStatus) CanTransition(to FileStatus) bool {
	return contains(fileTransitions[s], to)
}

type OcrStatus string

const (
	OcrStatusProcessing OcrStatus = "processing"
	OcrStatusCompleted  OcrStatus = "completed"
	OcrStatusError      OcrStatus = "error"
)

type AiStatus string

const (
	AiStatusProcessing AiStatus = "processing"
	AiStatusCompleted  AiStatus = "completed"
	AiStatusError      AiStatus = "error"
)

type PredictionStatus string

const (
	PredictionStatusCompleted PredictionStatus = "completed"
	PredictionStatusError     PredictionStatus = "error"
)

type JournalStatus string

const (
	JournalStatusDraft    JournalStatus = "draft"
	JournalStatusExported JournalStatus = "exported"
	JournalStatusImported JournalStatus = "imported"
	JournalStatusError    JournalStatus = "error"
)

var journalTransitions = map[JournalStatus][]JournalStatus{
	JournalStatusDraft:    {JournalStatusExported, JournalStatusError},
	JournalStatusExported: {JournalStatusImported, JournalStatusError},
	JournalStatusImported: {JournalStatusError},
	JournalStatusError:    {},
}

func (s JournalStatus) CanTransition(to JournalStatus) bool {
	return contains(journalTransitions[s], to)
}

type ReconciliationStatus string

const (
	ReconciliationStatusPending     ReconciliationStatus = "pending"
	ReconciliationStatusMatched     ReconciliationStatus = "matched"
	ReconciliationStatusDiscrepancy ReconciliationStatus = "discrepancy"
	ReconciliationStatusResolved    ReconciliationStatus = "resolved"
)

var reconciliationTransitions = map[ReconciliationStatus][]ReconciliationStatus{
	ReconciliationStatusPending:     {ReconciliationStatusMatched, ReconciliationStatusDiscrepancy},
	ReconciliationStatusMatched:     {ReconciliationStatusMatched, ReconciliationStatusDiscrepancy},
	ReconciliationStatusDiscrepancy: {ReconciliationStatusResolved},
	ReconciliationStatusResolved:    {},
}

func (s ReconciliationStatus) CanTransition(to ReconciliationStatus) bool {
	return contains(reconciliationTransitions[s], to)
}

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
