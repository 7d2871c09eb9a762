// Package testutil contains helper builders and fakes used across tests to
// reduce boilerplate when constructing engine records and driving analysis
// sessions without a real engine process. These helpers are intentionally
// minimal and avoid adding third-party dependencies. They are not intended
// for production usage.
package testutil
