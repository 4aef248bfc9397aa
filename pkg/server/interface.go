/*
Package server implements MessagePack IPC for sign-to-text sessions.

Clients write msgpack maps to stdin and read one msgpack map per request from
stdout. Every request carries an id (generated when missing) and an action.

Recognize a frame and get next-word suggestions for the sentence so far:

	{"id": "req_001", "action": "predict", "image": "data:image/jpeg;base64,...", "sentence": "i like ", "l": 5}
	{"id": "req_001", "label": "c", "sentence": "i like c", "s": [{"w": "cats", "p": 0.5, "r": 1}, {"w": "dogs", "p": 0.5, "r": 2}], "c": 2, "t": 210}

Suggestions only:

	{"id": "req_002", "action": "suggest", "sentence": "i like"}

Complete the word being spelled:

	{"id": "req_003", "action": "complete", "p": "i like ca", "l": 3}
	{"id": "req_003", "s": [{"w": "cats", "f": 3, "r": 1}], "c": 1, "t": 40}

Read text aloud, retrain from the corpus, inspect the model:

	{"id": "req_004", "action": "speak", "text": "i like cats"}
	{"id": "req_005", "action": "reload"}
	{"id": "req_006", "action": "stats"}

Times are in microseconds. The END word marks that the sentence may stop
there; it is left in the results unless [server] filter_end is set.

The server keeps a request count and re-reads its config file when it has
changed, every configCheckInterval requests.
*/
package server

// Actions understood by the server.
const (
	ActionPredict  = "predict"
	ActionSuggest  = "suggest"
	ActionComplete = "complete"
	ActionSpeak    = "speak"
	ActionReload   = "reload"
	ActionStats    = "stats"
)

// Request is the union of every request shape; fields unused by an action are ignored.
type Request struct {
	ID       string `msgpack:"id"`
	Action   string `msgpack:"action"`
	Image    string `msgpack:"image,omitempty"`
	Sentence string `msgpack:"sentence,omitempty"`
	Prefix   string `msgpack:"p,omitempty"`
	Text     string `msgpack:"text,omitempty"`
	Limit    int    `msgpack:"l,omitempty"`
}

// Suggestion is one ranked next word.
type Suggestion struct {
	Word        string  `msgpack:"w"`
	Probability float64 `msgpack:"p"`
	Rank        uint16  `msgpack:"r"`
}

// PredictResponse answers a predict request.
type PredictResponse struct {
	ID          string       `msgpack:"id"`
	Label       string       `msgpack:"label"`
	Sentence    string       `msgpack:"sentence"`
	Suggestions []Suggestion `msgpack:"s"`
	Count       int          `msgpack:"c"`
	TimeTaken   int64        `msgpack:"t"`
}

// SuggestResponse answers a suggest request.
type SuggestResponse struct {
	ID          string       `msgpack:"id"`
	Suggestions []Suggestion `msgpack:"s"`
	Count       int          `msgpack:"c"`
	TimeTaken   int64        `msgpack:"t"`
}

// Completion is one ranked vocabulary word.
type Completion struct {
	Word      string `msgpack:"w"`
	Frequency int    `msgpack:"f"`
	Rank      uint16 `msgpack:"r"`
}

// CompleteResponse answers a complete request.
type CompleteResponse struct {
	ID          string       `msgpack:"id"`
	Completions []Completion `msgpack:"s"`
	Count       int          `msgpack:"c"`
	TimeTaken   int64        `msgpack:"t"`
}

// StatusResponse answers speak and reload requests.
type StatusResponse struct {
	ID      string `msgpack:"id"`
	Status  string `msgpack:"status"`
	Message string `msgpack:"message,omitempty"`
}

// StatsResponse reports the loaded model.
type StatsResponse struct {
	ID      string         `msgpack:"id"`
	Status  string         `msgpack:"status"`
	Stats   map[string]int `msgpack:"stats"`
	Reloads int            `msgpack:"reloads"`
	Corpus  string         `msgpack:"corpus"`
}

// ErrorResponse holds basic error information
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
