package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/hongjun500/linechat/client"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:1927", "server address")
	flag.Parse()

	c, err := client.Dial(*addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial error: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			line, err := c.ReadLine(0)
			if err != nil {
				if !errors.Is(err, io.EOF) {
					fmt.Fprintf(os.Stderr, "read error: %v\n", err)
				}
				return
			}
			fmt.Println(line)
		}
	}()

	in := bufio.NewScanner(os.Stdin)
	for in.Scan() {
		if err := c.Send(in.Text()); err != nil {
			fmt.Fprintf(os.Stderr, "send error: %v\n", err)
			break
		}
		if in.Text() == "/leave" {
			break
		}
	}
	// end of stdin without /leave still tells the server we are gone
	_ = c.CloseWrite()
	<-done
}
