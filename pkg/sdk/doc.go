// Package doorpilot provides a Go client for the doorpilot copilot API.
//
// The API has three operations: streaming chat, quick diagnosis and
// filtered vector search. Chat responses arrive as a token stream
// ending with a structured final frame.
//
//	client := doorpilot.New("https://ai.aas-portal.com",
//	    doorpilot.WithToken(token),
//	)
//
//	stream, _ := client.Chat(ctx, &doorpilot.ChatRequest{
//	    Message: "The door won't close all the way",
//	    Context: &doorpilot.PageContext{Manufacturer: "Stanley", Model: "Dura-Glide"},
//	})
//	defer stream.Close()
//	for {
//	    ev, err := stream.Recv()
//	    if err == io.EOF {
//	        break
//	    }
//	    fmt.Print(ev.Token)
//	}
//
// Diagnose and Search are plain request/response calls:
//
//	diag, _ := client.Diagnose(ctx, &doorpilot.DiagnoseRequest{
//	    DoorID:  "door-114",
//	    Symptom: "door won't close",
//	})
package doorpilot
