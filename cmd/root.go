/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	prof    interface{ Stop() }
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nsele",
	Short: "Stabilized Navier-Stokes element evaluation",
	Long: `
Evaluates the residual and tangent of stabilized Navier-Stokes fluid elements,
checks tangents against finite differences and assembles structured patches.

nsele evaluate -I input.yaml`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		switch viper.GetString("profile") {
		case "cpu":
			prof = profile.Start(profile.CPUProfile, profile.ProfilePath("."))
		case "mem":
			prof = profile.Start(profile.MemProfile, profile.ProfilePath("."))
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if prof != nil {
			prof.Stop()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.nsele.yaml)")
	rootCmd.PersistentFlags().String("profile", "", "write a cpu or mem profile to the current directory")
	_ = viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		// Search config in home directory with name ".nsele" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".nsele")
	}
	viper.SetEnvPrefix("nsele")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
