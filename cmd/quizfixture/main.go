// quizfixture serves a small local quiz chain for exercising the
// solver end to end without a real quiz endpoint. Every page accepts
// any credentials; answers are checked for real.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

var addr = flag.String("addr", ":9090", "listen address")

type submission struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
	URL    string `json:"url"`
	Answer any    `json:"answer"`
}

func main() {
	flag.Parse()

	r := chi.NewRouter()
	r.Use(middleware.Logger)

	base := "http://localhost" + *addr

	r.Get("/quiz/1", func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprintf(w, `<html><body>
<h1>Question 1</h1>
<p>What is the sum of the values in the attached file?</p>
<p>Download the data: <a href="%s/data.csv">data.csv</a></p>
<p>Submit your answer to: %s/submit/1</p>
</body></html>`, base, base)
	})

	r.Get("/data.csv", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		fmt.Fprint(w, "value\n10\n20\n30\n40\n")
	})

	r.Get("/quiz/2", func(w http.ResponseWriter, req *http.Request) {
		// the question only exists after the hidden payload is decoded
		fmt.Fprintf(w, `<html><body>
<h1>Question 2</h1>
<div id="q"></div>
<script>
document.getElementById("q").innerText = atob("V2hhdCBpcyB0aGUgc2VjcmV0IHdvcmQ/IFRoZSBzZWNyZXQgd29yZCBpcyBzd29yZGZpc2gu");
</script>
<p>Submit your answer to: %s/submit/2</p>
</body></html>`, base)
	})

	r.Get("/quiz/3", func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprintf(w, `<html><body>
<h1>Question 3</h1>
<p>Fetch %s/api/values and report the maximum value.</p>
<p>Use header X-API-Key: fixture-key-123</p>
<p>Submit your answer to: %s/submit/3</p>
</body></html>`, base, base)
	})

	r.Get("/api/values", func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("X-API-Key") != "fixture-key-123" {
			http.Error(w, `{"detail":"missing or invalid API key"}`, http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"values": [3, 99, 42, 7]}`)
	})

	r.Post("/submit/{n}", func(w http.ResponseWriter, req *http.Request) {
		var sub submission
		if err := json.NewDecoder(req.Body).Decode(&sub); err != nil {
			http.Error(w, `{"detail":"bad body"}`, http.StatusBadRequest)
			return
		}

		n := chi.URLParam(req, "n")
		correct, next := check(n, sub.Answer, base)

		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{"correct": correct}
		if !correct {
			resp["reason"] = "wrong answer for question " + n
			// wrong answers still advance, matching real chain behavior
		}
		if next != "" {
			resp["url"] = next
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	log.Printf("quiz fixture on %s, chain starts at %s/quiz/1", *addr, base)
	log.Fatal(http.ListenAndServe(*addr, r))
}

func check(n string, answer any, base string) (correct bool, next string) {
	switch n {
	case "1":
		return numEq(answer, 100), base + "/quiz/2"
	case "2":
		s, _ := answer.(string)
		return strings.EqualFold(strings.TrimSpace(s), "swordfish"), base + "/quiz/3"
	case "3":
		return numEq(answer, 99), ""
	}
	return false, ""
}

func numEq(answer any, want float64) bool {
	switch v := answer.(type) {
	case float64:
		return v == want
	case string:
		return strings.TrimSpace(v) == fmt.Sprintf("%v", want)
	}
	return false
}
