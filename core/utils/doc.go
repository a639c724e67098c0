// Package utils provides common utility functions for the delivery-tracker application.
// It includes helper functions for type conversion and the normalisation of
// spreadsheet cell text that doesn't fit into domain-specific packages.
package utils
