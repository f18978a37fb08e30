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


package openai

import "regexp"

// Small local models produce a recurring set of JSON defects. The two worth
// repairing mechanically are keys missing their opening quote (`, tag":`)
// and trailing commas before a closing bracket.
var (
	unquotedKeyRe   = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)(":)`)
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
)

// repairJSON attempts to fix common JSON formatting issues from LLM responses
// before parsing. It is a best-effort cleanup; output that is still malformed
// is handled by the caller's retry loop.
func repairJSON(s string) string {
	s = unquotedKeyRe.ReplaceAllString(s, `$1"$2$3`)
	s = trailingCommaRe.ReplaceAllString(s, `$1`)
	return s
}
