// Package classify turns unstructured analysis narratives into typed risk
// and summary records using ordered keyword tables.
package classify
