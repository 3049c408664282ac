/*
 * Copyright 2025 Olake By Datazip
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

type MessageType string

const (
	ConnectionStatusMessage MessageType = "CONNECTION_STATUS"
	StateMessage            MessageType = "STATE"
	StatsMessage            MessageType = "STATS"
)

type ConnectionStatus string

const (
	ConnectionSucceed ConnectionStatus = "SUCCEEDED"
	ConnectionFailed  ConnectionStatus = "FAILED"
)

// Message is the envelope printed by the CLI commands
type Message struct {
	Type             MessageType  `json:"type"`
	ConnectionStatus *StatusRow   `json:"connectionStatus,omitempty"`
	State            *State       `json:"state,omitempty"`
	Stats            *ImportStats `json:"stats,omitempty"`
}

type StatusRow struct {
	Status  ConnectionStatus `json:"status,omitempty"`
	Message string           `json:"message,omitempty"`
}

// ImportStats summarises one entity run
type ImportStats struct {
	Entity       string `json:"entity"`
	Process      string `json:"process"`
	Queries      int64  `json:"queries"`
	Rows         int64  `json:"rows"`
	ModifiedKeys int64  `json:"modified_keys"`
	DeletedKeys  int64  `json:"deleted_keys"`
	ParentKeys   int64  `json:"parent_keys"`
	Duration     string `json:"duration"`
}
