package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/codingconcepts/env"
	"github.com/joho/godotenv"
)

type Config struct {
	Origin string `env:"SIMULATE_ORIGIN" default:"http://localhost:5006"`
}

// Command simulates the authorization server's side of the flow: given the
// parameters of the authorization request, it returns the query params that the
// authorization server would send back to our callback URL
type Command struct {
	name     string
	initFunc func(cmd *flag.FlagSet)
	runFunc  func(authorizeParams url.Values) url.Values
}

var commands = []Command{
	{"login", initLoginCommand, runLoginCommand},
	{"deny", initDenyCommand, runDenyCommand},
}

func main() {
	// We only want to simulate logins locally; this never talks to a real
	// authorization server
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Fatalf("error loading .env file: %v", err)
	}
	config := Config{}
	if err := env.Set(&config); err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	// Parse the subcommand that we want to run, or print usage if no match
	var command *Command
	commandName := ""
	if len(os.Args) > 1 {
		commandName = os.Args[1]
	}
	for i := range commands {
		if commands[i].name == commandName {
			command = &commands[i]
			break
		}
	}
	if command == nil {
		commandNames := make([]string, 0, len(commands))
		for i := range commands {
			commandNames = append(commandNames, commands[i].name)
		}
		log.Fatalf("Usage: simulate [%s]", strings.Join(commandNames, "|"))
	}

	// Initialize command-line flags for the chosen subcommand
	flagSet := flag.NewFlagSet(command.name, flag.ExitOnError)
	command.initFunc(flagSet)
	if err := flagSet.Parse(os.Args[2:]); err != nil {
		log.Fatalf("Parse error: %v", err)
	}

	// Don't follow redirects: we want to inspect where the server sends us
	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	// Hit the start endpoint to begin the initial leg, and we should be redirected to
	// the authorization server
	startURL := config.Origin + "/auth/start"
	fmt.Printf("GET %s\n", startURL)
	res, err := client.Get(startURL)
	if err != nil {
		log.Fatalf("error sending HTTP request: %v", err)
	}
	res.Body.Close()
	fmt.Printf("< %d\n", res.StatusCode)
	if res.StatusCode != http.StatusSeeOther {
		log.Fatalf("expected redirect; got response %d", res.StatusCode)
	}
	location, err := url.Parse(res.Header.Get("location"))
	if err != nil {
		log.Fatalf("invalid redirect location: %v", err)
	}
	authorizeParams := location.Query()
	for k, values := range authorizeParams {
		for _, v := range values {
			fmt.Printf("> %s: %s\n", k, v)
		}
	}
	if authorizeParams.Get("response_type") != "token" {
		log.Fatalf("expected response_type=token; got '%s'", authorizeParams.Get("response_type"))
	}

	// Play the part of the authorization server, redirecting back to the callback URL
	// with a query string in place of the fragment that a user agent would relay
	callbackURL, err := url.Parse(authorizeParams.Get("redirect_uri"))
	if err != nil || callbackURL.String() == "" {
		log.Fatalf("authorization request is missing a valid redirect_uri")
	}
	q := command.runFunc(authorizeParams)
	if state := authorizeParams.Get("state"); state != "" {
		q.Set("state", state)
	}
	callbackURL.RawQuery = q.Encode()

	// Send the callback request and print the result
	fmt.Printf("\nGET %s\n", callbackURL)
	res, err = client.Get(callbackURL.String())
	if err != nil {
		log.Fatalf("error sending HTTP request: %v", err)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		log.Fatalf("error reading response body: %v", err)
	}
	fmt.Printf("< %d\n\n%s\n", res.StatusCode, body)
}
