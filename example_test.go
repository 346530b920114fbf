package redex_test

import (
	"context"
	"fmt"

	"github.com/basegate/redex/redconn"
	"github.com/basegate/redex/redis"
)

func Example_usage() {
	ctx := context.Background()

	c, err := redconn.Connect(ctx, redconn.Opts{
		Host:     "127.0.0.1",
		Port:     6379,
		Password: "",
		DB:       0,
	})
	if err != nil {
		fmt.Println("connect:", err)
		return
	}
	defer c.Close()

	if _, err := c.Exec(redis.Cmd("SET", "greeting", "hello")); err != nil {
		fmt.Println("set:", err)
		return
	}

	reply, err := c.Exec(redis.Cmd("GET", "greeting"))
	if err != nil {
		fmt.Println("get:", err)
		return
	}
	b, _ := reply.Bytes()
	fmt.Println(string(b))
}

func Example_pipeline() {
	ctx := context.Background()
	c, err := redconn.Connect(ctx, redconn.Opts{Host: "127.0.0.1", Port: 6379})
	if err != nil {
		fmt.Println("connect:", err)
		return
	}
	defer c.Close()

	p := c.Pipeline()
	p.Enqueue("INCR", "counter")
	p.Enqueue("INCR", "counter")
	p.Enqueue("GET", "counter")
	replies, err := p.Flush()
	if err != nil {
		fmt.Println("pipeline:", err)
		return
	}
	n, _ := replies[2].Int()
	fmt.Println(n)
}

func Example_pubSub() {
	ctx := context.Background()
	c, err := redconn.Connect(ctx, redconn.Opts{Host: "127.0.0.1", Port: 6379})
	if err != nil {
		fmt.Println("connect:", err)
		return
	}
	defer c.Close()

	ps, err := c.Subscribe("notifications")
	if err != nil {
		fmt.Println("subscribe:", err)
		return
	}
	defer ps.Close()

	for evt := range ps.Events() {
		if evt.Kind == redis.EventMessage {
			fmt.Println(evt.Channel, string(evt.Payload))
			break
		}
	}
}
