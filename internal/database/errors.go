// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

package database

import "fmt"

// InvalidFilterError reports a bad caller-supplied filter: an unparseable
// date bound or a start date after the end date.
type InvalidFilterError struct {
	Field  string
	Reason string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid filter %s: %s", e.Field, e.Reason)
}

// QueryFailedError wraps any datastore error with the operation that failed.
// Handlers map it to a 500-class response with the original message attached.
type QueryFailedError struct {
	Op  string
	Err error
}

func (e *QueryFailedError) Error() string {
	return fmt.Sprintf("query %s failed: %v", e.Op, e.Err)
}

func (e *QueryFailedError) Unwrap() error {
	return e.Err
}
