// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import "errors"

var (
	// ErrUnavailable indicates the AI service cannot currently serve requests,
	// typically because the endpoint is unreachable or the model is not loaded.
	// Callers on the query path treat this as a signal to degrade to keyword
	// search rather than fail.
	ErrUnavailable = errors.New("ai service unavailable")

	// ErrEmptyInput indicates a request with no usable text.
	ErrEmptyInput = errors.New("empty input text")
)
