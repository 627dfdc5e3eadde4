package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room operations",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomGetCmd())
	cmd.AddCommand(newRoomJoinCmd())
	cmd.AddCommand(newRoomLeaveCmd())
	cmd.AddCommand(newRoomDeleteCmd())
	cmd.AddCommand(newRoomSendCmd())
	cmd.AddCommand(newRoomBankCmd())

	return cmd
}

func newRoomCreateCmd() *cobra.Command {
	var bankBalance, initialStake int64
	var maxPlayers int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a room with yourself as admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			body := map[string]any{}
			if bankBalance > 0 {
				body["bankBalance"] = bankBalance
			}
			if initialStake > 0 {
				body["initialStake"] = initialStake
			}
			if maxPlayers > 0 {
				body["maxPlayers"] = maxPlayers
			}

			var result Room
			if err := client.Post("/api/v1/rooms", body, &result); err != nil {
				return err
			}

			out.Print(result)
			return nil
		},
	}

	cmd.Flags().Int64Var(&bankBalance, "bank", 0, "Initial bank balance (default: server default)")
	cmd.Flags().Int64Var(&initialStake, "stake", 0, "Starting balance for each player")
	cmd.Flags().IntVar(&maxPlayers, "max-players", 0, "Seat cap (default: server default)")

	return cmd
}

func newRoomGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <room-id>",
		Short: "Show a room's current state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			var result Room
			if err := client.Get("/api/v1/rooms/"+args[0], &result); err != nil {
				return err
			}

			out.Print(result)
			return nil
		},
	}
}

func newRoomJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <join-code>",
		Short: "Join a room by its join code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			var result Room
			body := map[string]string{"joinCode": args[0]}
			if err := client.Post("/api/v1/rooms/join", body, &result); err != nil {
				return err
			}

			out.Print(result)
			return nil
		},
	}
}

func newRoomLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave <room-id>",
		Short: "Leave a room, giving up your seat and balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			if err := client.Post("/api/v1/rooms/"+args[0]+"/leave", nil, nil); err != nil {
				return err
			}

			out.PrintMessage("Left room")
			return nil
		},
	}
}

func newRoomDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <room-id>",
		Short: "Delete a room (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			if err := client.Delete("/api/v1/rooms/" + args[0]); err != nil {
				return err
			}

			out.PrintMessage("Room deleted")
			return nil
		},
	}
}

func newRoomSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <room-id> <receiver-id> <amount>",
		Short: "Send money to another player",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			amount, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return err
			}

			var result Room
			body := map[string]any{"receiverId": args[1], "amount": amount}
			if err := client.Post("/api/v1/rooms/"+args[0]+"/transfer", body, &result); err != nil {
				return err
			}

			out.Print(result)
			return nil
		},
	}
}

func newRoomBankCmd() *cobra.Command {
	var action string

	cmd := &cobra.Command{
		Use:   "bank <room-id> <player-id> <amount>",
		Short: "Move money between the bank and a player (admin only)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			amount, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return err
			}

			var result Room
			body := map[string]any{"playerId": args[1], "amount": amount, "action": action}
			if err := client.Post("/api/v1/rooms/"+args[0]+"/bank", body, &result); err != nil {
				return err
			}

			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&action, "action", "ADD", "ADD or DEDUCT")

	return cmd
}
