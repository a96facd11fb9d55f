/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage implements layout persistence and indexing.
// It handles create/open/save for the JSON manifest (layout.json) with transactional writes, timestamped backups
// and validation against an embedded JSON schema.
// A per-project SQLite index at <project>/.uid/index.sqlite keeps a searchable control catalog and the revision history.
// The control catalog is derived from layout.json and can be rebuilt at any time; revisions are not.
package storage
