package handler

import "time"

// APIV1Prefix is the canonical base path for public HTTP API v1.
// Keep a single source of truth to avoid path drift across handlers and tests.
const APIV1Prefix = "/api/v1"

// serviceTimeout bounds a single use-case call made on behalf of a request.
const serviceTimeout = 5 * time.Second
