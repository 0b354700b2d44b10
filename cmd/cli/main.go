// Command cli is a small terminal client for the messaging API. Passwords
// are read from the terminal with echo disabled.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"golang.org/x/term"
)

const usage = `usage: cli [-s server] [-t token] command [args]

commands:
  register <username> <first> <last> <phone>   create an account, prints a token
  login <username>                             log in, prints a token
  users                                        list registered users
  send <to> <body...>                          send a message
  inbox <username>                             list received messages
  outbox <username>                            list sent messages
  show <id>                                    show one message
  read <id>                                    mark a message as read
`

type client struct {
	server string
	token  string
	http   *http.Client
}

func (c *client) do(method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.server+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s (%d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("request failed (%d)", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("%v", err)
	}
	fmt.Println(string(b))
}

func main() {

	server := flag.String("s", "http://localhost:8080", "server address")
	token := flag.String("t", os.Getenv("MESSAGELY_TOKEN"), "bearer token")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	c := &client{server: strings.TrimSuffix(*server, "/"), token: *token, http: &http.Client{}}

	var out map[string]any
	var err error

	switch cmd := args[0]; cmd {
	case "register":
		if len(args) != 5 {
			log.Fatalf("usage: register <username> <first> <last> <phone>")
		}
		var pw string
		if pw, err = readPassword("password: "); err != nil {
			log.Fatalf("%v", err)
		}
		err = c.do(http.MethodPost, "/auth/register", map[string]string{
			"username": args[1], "password": pw,
			"first_name": args[2], "last_name": args[3], "phone": args[4],
		}, &out)
	case "login":
		if len(args) != 2 {
			log.Fatalf("usage: login <username>")
		}
		var pw string
		if pw, err = readPassword("password: "); err != nil {
			log.Fatalf("%v", err)
		}
		err = c.do(http.MethodPost, "/auth/login", map[string]string{"username": args[1], "password": pw}, &out)
	case "users":
		err = c.do(http.MethodGet, "/users", nil, &out)
	case "send":
		if len(args) < 3 {
			log.Fatalf("usage: send <to> <body...>")
		}
		err = c.do(http.MethodPost, "/messages", map[string]string{
			"to_username": args[1], "body": strings.Join(args[2:], " "),
		}, &out)
	case "inbox":
		if len(args) != 2 {
			log.Fatalf("usage: inbox <username>")
		}
		err = c.do(http.MethodGet, "/users/"+args[1]+"/messages/to", nil, &out)
	case "outbox":
		if len(args) != 2 {
			log.Fatalf("usage: outbox <username>")
		}
		err = c.do(http.MethodGet, "/users/"+args[1]+"/messages/from", nil, &out)
	case "show":
		if len(args) != 2 {
			log.Fatalf("usage: show <id>")
		}
		err = c.do(http.MethodGet, "/messages/"+args[1], nil, &out)
	case "read":
		if len(args) != 2 {
			log.Fatalf("usage: read <id>")
		}
		err = c.do(http.MethodPost, "/messages/"+args[1]+"/read", nil, &out)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("%v", err)
	}
	printJSON(out)
}
