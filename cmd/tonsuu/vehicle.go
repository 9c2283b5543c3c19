package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func vehicleCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vehicle",
		Short: "Manage the registered vehicle database",
	}
	cmd.AddCommand(
		vehicleAddCommand(a),
		vehicleListCommand(a),
		vehicleRemoveCommand(a),
	)
	return cmd
}

func vehicleAddCommand(a *app) *cobra.Command {
	var truckType string
	cmd := &cobra.Command{
		Use:   "add [plate] [max-capacity]",
		Short: "Register a vehicle's plate and max capacity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			capacity, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid capacity %q: %w", args[1], err)
			}

			store, err := a.openVehicles()
			if err != nil {
				return err
			}
			defer store.Close()

			v, err := store.Add(args[0], truckType, capacity)
			if err != nil {
				return err
			}
			fmt.Printf("registered %s as %s (%.1ft, %s)\n",
				v.LicensePlate, v.TruckType, v.MaxCapacity, v.Class().Label())
			return nil
		},
	}
	cmd.Flags().StringVarP(&truckType, "truck", "t", "", "Truck type label (e.g. 4tダンプ)")
	return cmd
}

func vehicleListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered vehicles",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openVehicles()
			if err != nil {
				return err
			}
			defer store.Close()

			vehicles, err := store.All()
			if err != nil {
				return err
			}
			for _, v := range vehicles {
				fmt.Printf("%-20s %-12s %.1ft %s\n",
					v.LicensePlate, v.TruckType, v.MaxCapacity, v.Class().Label())
			}
			fmt.Printf("%d vehicles\n", len(vehicles))
			return nil
		},
	}
}

func vehicleRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove [plate]",
		Short: "Remove a registered vehicle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openVehicles()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Remove(args[0]); err != nil {
				return err
			}
			fmt.Printf("removed %s\n", args[0])
			return nil
		},
	}
}
