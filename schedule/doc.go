// Package schedule runs periodic jobs such as the ingestion cycle.
package schedule
